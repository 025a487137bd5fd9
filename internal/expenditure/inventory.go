package expenditure

import (
	"strings"

	"raseed/internal/core"
)

// GroceryCategory is the category whose receipts make up the grocery inventory.
const GroceryCategory = "groceries"

// InventoryItems lists the items on every receipt of class suffix, in pass
// order. Receipts without a valid date are skipped; the amount is not needed.
func InventoryItems(passes []core.Pass, suffix string) []core.InventoryItem {
	items := []core.InventoryItem{}
	for _, p := range passes {
		if p.ClassSuffix() != suffix {
			continue
		}
		r := FromPass(p)
		if !r.HasDate {
			continue
		}
		m, ok := p.Module(core.ModuleItems)
		if !ok {
			continue
		}
		for _, name := range strings.Split(m.Body, ",") {
			name = stripItemPrice(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			items = append(items, core.InventoryItem{
				Item:         name,
				PurchaseDate: r.Date.Format(core.DateLayout),
			})
		}
	}
	return items
}

// stripItemPrice drops a trailing " (12.50)" price written by receipt creation.
func stripItemPrice(name string) string {
	if !strings.HasSuffix(name, ")") {
		return name
	}
	open := strings.LastIndex(name, " (")
	if open < 0 {
		return name
	}
	if _, err := core.ParseAmount(name[open+2 : len(name)-1]); err != nil {
		return name
	}
	return strings.TrimSpace(name[:open])
}

// Inventory returns the grocery items across passes. An empty list is
// returned when the table has no grocery category.
func (e *Engine) Inventory(passes []core.Pass) []core.InventoryItem {
	suffix, ok := e.Table().SuffixFor(GroceryCategory)
	if !ok {
		return []core.InventoryItem{}
	}
	return InventoryItems(passes, suffix)
}
