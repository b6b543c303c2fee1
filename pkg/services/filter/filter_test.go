package filter

import (
	"testing"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entities = []domain.Entity{
	{ID: 1, Name: "Main Meter"},
	{ID: 2, Name: "Chiller Meter"},
	{ID: 3, Name: "Lighting"},
}

func TestFilter_Replace(t *testing.T) {
	f := New()

	f.Replace(entities)
	selected, ok := f.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(1), selected.ID)
	assert.True(t, f.CanSubmit())

	f.Replace(nil)
	_, ok = f.Selected()
	assert.False(t, ok)
	assert.False(t, f.CanSubmit())
	assert.Empty(t, f.Filtered())
}

func TestFilter_Search(t *testing.T) {
	tests := []struct {
		name     string
		keyword  string
		expected []int64
		selected int64
	}{
		{name: "empty keyword returns full list", keyword: "", expected: []int64{1, 2, 3}, selected: 1},
		{name: "case insensitive", keyword: "meter", expected: []int64{1, 2}, selected: 1},
		{name: "single match", keyword: "CHILL", expected: []int64{2}, selected: 2},
		{name: "no match", keyword: "boiler", expected: nil},
		{name: "leading space is kept", keyword: " meter", expected: []int64{1, 2}, selected: 1},
		{name: "trailing space is kept", keyword: "meter ", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			f.Replace(entities)

			result := f.Search(tt.keyword)
			var ids []int64
			for _, e := range result {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.expected, ids)

			selected, ok := f.Selected()
			if tt.expected == nil {
				assert.False(t, ok)
				assert.False(t, f.CanSubmit())
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.selected, selected.ID)
		})
	}
}

func TestFilter_SearchIsRelativeToSource(t *testing.T) {
	f := New()
	f.Replace(entities)

	f.Search("chiller")
	result := f.Search("light")
	require.Len(t, result, 1)
	assert.Equal(t, int64(3), result[0].ID)

	assert.Len(t, f.Search(""), 3)
}

func TestFilter_SearchOnEmptyList(t *testing.T) {
	f := New()
	assert.NotPanics(t, func() {
		assert.Empty(t, f.Search("x"))
		assert.Empty(t, f.Search(""))
	})
}

func TestFilter_Select(t *testing.T) {
	f := New()
	f.Replace(entities)
	f.Search("meter")

	require.NoError(t, f.Select(2))
	selected, _ := f.Selected()
	assert.Equal(t, "Chiller Meter", selected.Name)

	err := f.Select(3)
	assert.ErrorIs(t, err, domain.ErrNoSelection)
	selected, _ = f.Selected()
	assert.Equal(t, int64(2), selected.ID)
}

func TestFilter_Suggest(t *testing.T) {
	f := New()

	_, ok := f.Suggest("main")
	assert.False(t, ok)

	f.Replace(entities)
	suggestion, ok := f.Suggest("Lightning")
	require.True(t, ok)
	assert.Equal(t, int64(3), suggestion.ID)

	_, ok = f.Suggest("  ")
	assert.False(t, ok)
}
