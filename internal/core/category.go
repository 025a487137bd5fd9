package core

import (
	"fmt"
	"strings"
)

// CategoryMapping maps a pass class suffix to a human category name.
type CategoryMapping struct {
	Suffix string
	Name   string
}

// CategoryTable is an ordered, immutable suffix -> category lookup. The
// declared order is the order categories are reported in.
type CategoryTable struct {
	entries  []CategoryMapping
	bySuffix map[string]string
	byName   map[string]string
}

// NewCategoryTable builds a table from the given mappings. Suffixes and
// names must be non-empty and unique.
func NewCategoryTable(entries ...CategoryMapping) (CategoryTable, error) {
	t := CategoryTable{
		entries:  make([]CategoryMapping, 0, len(entries)),
		bySuffix: make(map[string]string, len(entries)),
		byName:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		suffix := strings.TrimSpace(e.Suffix)
		name := strings.TrimSpace(e.Name)
		if suffix == "" || name == "" {
			return CategoryTable{}, fmt.Errorf("category mapping %q -> %q: suffix and name are required", e.Suffix, e.Name)
		}
		if _, dup := t.bySuffix[suffix]; dup {
			return CategoryTable{}, fmt.Errorf("duplicate category suffix %q", suffix)
		}
		if _, dup := t.byName[name]; dup {
			return CategoryTable{}, fmt.Errorf("duplicate category name %q", name)
		}
		t.entries = append(t.entries, CategoryMapping{Suffix: suffix, Name: name})
		t.bySuffix[suffix] = name
		t.byName[name] = suffix
	}
	return t, nil
}

// DefaultCategoryTable returns the receipt classes the issuer ships with.
func DefaultCategoryTable() CategoryTable {
	t, _ := NewCategoryTable(
		CategoryMapping{Suffix: "GroceryClass", Name: "groceries"},
		CategoryMapping{Suffix: "TravelClass", Name: "travel"},
		CategoryMapping{Suffix: "HealthClass", Name: "health"},
		CategoryMapping{Suffix: "EntertainmentClass", Name: "entertainment"},
		CategoryMapping{Suffix: "EducationClass", Name: "education"},
	)
	return t
}

// ParseCategoryTable parses "Suffix:name,Suffix:name" into a table.
func ParseCategoryTable(s string) (CategoryTable, error) {
	var entries []CategoryMapping
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		suffix, name, ok := strings.Cut(pair, ":")
		if !ok {
			return CategoryTable{}, fmt.Errorf("invalid category mapping %q: want Suffix:name", pair)
		}
		entries = append(entries, CategoryMapping{Suffix: suffix, Name: name})
	}
	if len(entries) == 0 {
		return CategoryTable{}, fmt.Errorf("category table %q has no mappings", s)
	}
	return NewCategoryTable(entries...)
}

// Entries returns a copy of the mappings in declared order.
func (t CategoryTable) Entries() []CategoryMapping {
	return append([]CategoryMapping(nil), t.entries...)
}

// Len returns the number of mappings.
func (t CategoryTable) Len() int { return len(t.entries) }

// Lookup returns the category name for a class suffix.
func (t CategoryTable) Lookup(suffix string) (string, bool) {
	name, ok := t.bySuffix[suffix]
	return name, ok
}

// CategoryFor returns the category for a suffix, passing unmapped suffixes
// through unchanged.
func (t CategoryTable) CategoryFor(suffix string) string {
	if name, ok := t.bySuffix[suffix]; ok {
		return name
	}
	return suffix
}

// SuffixFor resolves a category name (case-insensitive) back to its class suffix.
func (t CategoryTable) SuffixFor(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if suffix, ok := t.byName[name]; ok {
		return suffix, true
	}
	for _, e := range t.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Suffix, true
		}
	}
	return "", false
}

// Suffixes returns the class suffixes in declared order.
func (t CategoryTable) Suffixes() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Suffix
	}
	return out
}

// String renders the table in the same form ParseCategoryTable accepts.
func (t CategoryTable) String() string {
	parts := make([]string, len(t.entries))
	for i, e := range t.entries {
		parts[i] = e.Suffix + ":" + e.Name
	}
	return strings.Join(parts, ",")
}
