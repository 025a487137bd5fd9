package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCategoryTable(t *testing.T) {
	table := DefaultCategoryTable()
	require.Equal(t, 5, table.Len())
	assert.Equal(t, []string{"GroceryClass", "TravelClass", "HealthClass", "EntertainmentClass", "EducationClass"}, table.Suffixes())

	name, ok := table.Lookup("GroceryClass")
	assert.True(t, ok)
	assert.Equal(t, "groceries", name)

	assert.Equal(t, "MysteryClass", table.CategoryFor("MysteryClass"))
}

func TestNewCategoryTableRejectsBadInput(t *testing.T) {
	_, err := NewCategoryTable(CategoryMapping{Suffix: "", Name: "x"})
	assert.Error(t, err)

	_, err = NewCategoryTable(
		CategoryMapping{Suffix: "A", Name: "a"},
		CategoryMapping{Suffix: "A", Name: "b"},
	)
	assert.Error(t, err)

	_, err = NewCategoryTable(
		CategoryMapping{Suffix: "A", Name: "a"},
		CategoryMapping{Suffix: "B", Name: "a"},
	)
	assert.Error(t, err)
}

func TestParseCategoryTable(t *testing.T) {
	table, err := ParseCategoryTable(" GroceryClass:groceries , FuelClass:fuel ")
	require.NoError(t, err)
	assert.Equal(t, "GroceryClass:groceries,FuelClass:fuel", table.String())

	_, err = ParseCategoryTable("GroceryClass")
	assert.Error(t, err)

	_, err = ParseCategoryTable(" , ")
	assert.Error(t, err)
}

func TestSuffixForIsCaseInsensitive(t *testing.T) {
	table := DefaultCategoryTable()

	suffix, ok := table.SuffixFor("Travel")
	require.True(t, ok)
	assert.Equal(t, "TravelClass", suffix)

	_, ok = table.SuffixFor("fuel")
	assert.False(t, ok)
}

func TestEntriesReturnsCopy(t *testing.T) {
	table := DefaultCategoryTable()
	entries := table.Entries()
	entries[0].Name = "changed"

	name, _ := table.Lookup("GroceryClass")
	assert.Equal(t, "groceries", name)
	assert.Equal(t, "groceries", table.Entries()[0].Name)
}
