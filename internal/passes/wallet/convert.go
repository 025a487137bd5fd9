package wallet

import (
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/api/walletobjects/v1"

	"raseed/internal/core"
)

const defaultLanguage = "en-US"

// ToPass converts a generic wallet object into a pass.
func ToPass(o *walletobjects.GenericObject) core.Pass {
	if o == nil {
		return core.Pass{}
	}
	p := core.Pass{
		ID:                 o.Id,
		ClassID:            o.ClassId,
		State:              o.State,
		CardTitle:          localized(o.CardTitle),
		Header:             localized(o.Header),
		HexBackgroundColor: o.HexBackgroundColor,
	}
	if o.Barcode != nil {
		p.Barcode = o.Barcode.Value
	}
	for _, m := range o.TextModulesData {
		if m == nil {
			continue
		}
		p.TextModules = append(p.TextModules, core.TextModule{ID: m.Id, Header: m.Header, Body: m.Body})
	}
	return p
}

// ToObject converts a pass into a generic wallet object.
func ToObject(p core.Pass) *walletobjects.GenericObject {
	o := &walletobjects.GenericObject{
		Id:                 p.ID,
		ClassId:            p.ClassID,
		State:              p.State,
		CardTitle:          localizedString(p.CardTitle),
		Header:             localizedString(p.Header),
		HexBackgroundColor: p.HexBackgroundColor,
	}
	if o.State == "" {
		o.State = "ACTIVE"
	}
	if p.Barcode != "" {
		o.Barcode = &walletobjects.Barcode{Type: "QR_CODE", Value: p.Barcode}
	}
	for _, m := range p.TextModules {
		o.TextModulesData = append(o.TextModulesData, &walletobjects.TextModuleData{Id: m.ID, Header: m.Header, Body: m.Body})
	}
	return o
}

// ReadObjects decodes a JSON array of generic wallet objects in their REST
// representation and converts them to passes.
func ReadObjects(r io.Reader) ([]core.Pass, error) {
	var objects []*walletobjects.GenericObject
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		return nil, fmt.Errorf("decode wallet objects: %w", err)
	}
	out := make([]core.Pass, 0, len(objects))
	for i, o := range objects {
		if o == nil || o.Id == "" || o.ClassId == "" {
			return nil, fmt.Errorf("wallet object %d: id and classId are required", i)
		}
		out = append(out, ToPass(o))
	}
	return out, nil
}

func localized(s *walletobjects.LocalizedString) string {
	if s == nil || s.DefaultValue == nil {
		return ""
	}
	return s.DefaultValue.Value
}

func localizedString(v string) *walletobjects.LocalizedString {
	if v == "" {
		return nil
	}
	return &walletobjects.LocalizedString{
		DefaultValue: &walletobjects.TranslatedString{Language: defaultLanguage, Value: v},
	}
}
