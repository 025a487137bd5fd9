package core

import "strings"

// Text module identifiers used on receipt and insight passes.
const (
	ModuleMerchant = "MERCHANT_MODULE"
	ModuleDate     = "DATE_MODULE"
	ModuleItems    = "ITEMS_MODULE"
	ModuleTotal    = "TOTAL_MODULE"
	ModuleTax      = "TAX_MODULE"
	ModuleSummary  = "SUMMARY_MODULE"
	ModuleTrend    = "TREND_MODULE"
)

// UnknownClass is the class suffix reported for passes whose class id has no suffix.
const UnknownClass = "Unknown"

// DateLayout is the only accepted layout for DATE_MODULE bodies.
const DateLayout = "2006-01-02"

type (
	// TextModule is one labeled free-text field on a pass.
	TextModule struct {
		ID     string
		Header string
		Body   string
	}

	// Pass is a generic wallet object as stored by the issuer.
	Pass struct {
		ID                 string
		ClassID            string
		State              string
		CardTitle          string
		Header             string
		HexBackgroundColor string
		Barcode            string
		TextModules        []TextModule
	}
)

// Module returns the first text module with the given id.
func (p Pass) Module(id string) (TextModule, bool) {
	for _, m := range p.TextModules {
		if m.ID == id {
			return m, true
		}
	}
	return TextModule{}, false
}

// ClassSuffix returns the part of the class id after the issuer prefix,
// or UnknownClass when the class id is not issuer-qualified.
func (p Pass) ClassSuffix() string {
	parts := strings.Split(p.ClassID, ".")
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return UnknownClass
	}
	return parts[1]
}

// QualifiedID joins an issuer id and a suffix into a wallet resource id.
func QualifiedID(issuerID, suffix string) string {
	return issuerID + "." + suffix
}
