package expenditure

import (
	"strings"
	"time"

	"raseed/internal/core"
)

// FromPass builds the typed receipt view of a pass. Missing or malformed
// DATE_MODULE and TOTAL_MODULE bodies leave the matching Has flag unset.
func FromPass(p core.Pass) core.Receipt {
	r := core.Receipt{
		PassID:      p.ID,
		ClassSuffix: p.ClassSuffix(),
	}
	if m, ok := p.Module(core.ModuleDate); ok {
		r.DateKey = m.Body
		if d, err := time.Parse(core.DateLayout, strings.TrimSpace(m.Body)); err == nil {
			r.Date = d
			r.HasDate = true
		}
	}
	if m, ok := p.Module(core.ModuleTotal); ok {
		if amount, err := core.ParseTotalBody(m.Body); err == nil {
			r.Amount = amount
			r.HasAmount = true
		}
	}
	return r
}

// Ledger is a parsed pass list: the receipts usable in totals, in input
// order, and the number of passes that were skipped.
type Ledger struct {
	Receipts []core.Receipt
	Passes   int
	Skipped  int
}

// Parse converts passes into a ledger. Passes without a valid date and
// amount are counted as skipped and never reach the aggregation code.
func Parse(passes []core.Pass) Ledger {
	l := Ledger{
		Receipts: make([]core.Receipt, 0, len(passes)),
		Passes:   len(passes),
	}
	for _, p := range passes {
		r := FromPass(p)
		if !r.Valid() {
			l.Skipped++
			continue
		}
		l.Receipts = append(l.Receipts, r)
	}
	return l
}
