package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raseed/internal/core"
)

func TestReadObjects(t *testing.T) {
	const seed = `[
	  {
	    "id": "3388000000022979223.grocery_summer_2025_001",
	    "classId": "3388000000022979223.GroceryClass",
	    "state": "ACTIVE",
	    "textModulesData": [
	      {"header": "Store", "body": "FreshMarket Delights", "id": "MERCHANT_MODULE"},
	      {"header": "Date", "body": "2025-07-26", "id": "DATE_MODULE"},
	      {"header": "Total", "body": "USD 85.75", "id": "TOTAL_MODULE"}
	    ],
	    "barcode": {"type": "QR_CODE", "value": "3388000000022979223.grocery_summer_2025_001"},
	    "cardTitle": {"defaultValue": {"language": "en-US", "value": "Grocery Receipt: FreshMarket"}},
	    "header": {"defaultValue": {"language": "en-US", "value": "Summer Groceries"}},
	    "hexBackgroundColor": "#F4B400"
	  }
	]`

	got, err := ReadObjects(strings.NewReader(seed))
	require.NoError(t, err)
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, "GroceryClass", p.ClassSuffix())
	assert.Equal(t, "Grocery Receipt: FreshMarket", p.CardTitle)
	assert.Equal(t, "Summer Groceries", p.Header)
	assert.Equal(t, "#F4B400", p.HexBackgroundColor)
	assert.Equal(t, "3388000000022979223.grocery_summer_2025_001", p.Barcode)
	total, ok := p.Module(core.ModuleTotal)
	require.True(t, ok)
	assert.Equal(t, "USD 85.75", total.Body)
}

func TestReadObjectsRejectsMissingIDs(t *testing.T) {
	_, err := ReadObjects(strings.NewReader(`[{"classId": "x.Y"}]`))
	assert.Error(t, err)

	_, err = ReadObjects(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestToObjectRoundTripKeepsModules(t *testing.T) {
	p := core.Pass{
		ID:      "issuer.r1",
		ClassID: "issuer.TravelClass",
		Barcode: "issuer.r1",
		TextModules: []core.TextModule{
			{ID: core.ModuleMerchant, Header: "Merchant", Body: "Uber"},
			{ID: core.ModuleTotal, Header: "Total", Body: "INR 240"},
		},
	}
	o := ToObject(p)
	assert.Equal(t, "ACTIVE", o.State)
	assert.Nil(t, o.CardTitle)
	assert.Equal(t, "QR_CODE", o.Barcode.Type)

	back := ToPass(o)
	p.State = "ACTIVE"
	assert.Equal(t, p, back)
}
