package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the typed view of a pass used by the aggregation code. It is
// populated once from the pass text modules; Date and Amount are only
// meaningful when the matching Has flag is set.
type Receipt struct {
	PassID      string
	ClassSuffix string
	// DateKey is the raw DATE_MODULE body, used to count distinct days.
	DateKey   string
	Date      time.Time
	HasDate   bool
	Amount    decimal.Decimal
	HasAmount bool
}

// Valid reports whether the receipt can take part in totals.
func (r Receipt) Valid() bool {
	return r.HasDate && r.HasAmount
}

// InventoryItem is one grocery item and the date of the receipt it was on.
type InventoryItem struct {
	Item         string
	PurchaseDate string
}

type (
	// ScannedItem is one line item read off a receipt image.
	ScannedItem struct {
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
	}

	// ScannedReceipt is the structured data extracted from a receipt image or
	// PDF. Fields the model could not read are nil.
	ScannedReceipt struct {
		Merchant *string       `json:"merchant"`
		Date     *string       `json:"date"`
		Total    *float64      `json:"total"`
		Tax      *float64      `json:"tax"`
		Currency *string       `json:"currency"`
		Items    []ScannedItem `json:"items"`
	}

	// NewReceipt is a confirmed receipt submitted for storage as a pass.
	NewReceipt struct {
		Merchant string        `json:"merchant"`
		Date     string        `json:"date"`
		Total    float64       `json:"total"`
		Tax      *float64      `json:"tax"`
		Currency string        `json:"currency"`
		Category string        `json:"category"`
		Items    []ScannedItem `json:"items"`
	}
)

// Validate checks that a receipt can be turned into a pass.
func (r NewReceipt) Validate() error {
	if strings.TrimSpace(r.Merchant) == "" {
		return ErrEmptyMerchant
	}
	if len(r.Merchant) > 200 {
		return ErrMerchantTooLong
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(r.Date)); err != nil {
		return ErrInvalidDate
	}
	if r.Total < 0 || (r.Tax != nil && *r.Tax < 0) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// ItemDescriptions joins items as "description (price)" for display on a pass.
func (r NewReceipt) ItemDescriptions() string {
	names := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		d := strings.TrimSpace(it.Description)
		if d == "" {
			continue
		}
		if it.Price != nil {
			d = fmt.Sprintf("%s (%s)", d, decimal.NewFromFloat(*it.Price).StringFixed(2))
		}
		names = append(names, d)
	}
	return strings.Join(names, ", ")
}

// FormatAmount renders an amount with its currency the way TOTAL_MODULE
// bodies are written, e.g. "USD 85.75".
func FormatAmount(currency string, amount float64) string {
	v := decimal.NewFromFloat(amount).StringFixed(2)
	if currency = strings.TrimSpace(currency); currency == "" {
		return v
	}
	return currency + " " + v
}
