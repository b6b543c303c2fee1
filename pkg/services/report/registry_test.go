package report

import (
	"testing"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Definition{Type: "meterenergy", Params: []string{"meterid"}, Decomposer: &EnergyDecomposer{}})
	require.NoError(t, err)

	t.Run("duplicate", func(t *testing.T) {
		err := r.Register(Definition{Type: "meterenergy", Params: []string{"meterid"}, Decomposer: &EnergyDecomposer{}})
		assert.Error(t, err)
	})

	t.Run("invalid definitions", func(t *testing.T) {
		assert.Error(t, r.Register(Definition{Params: []string{"id"}, Decomposer: &EnergyDecomposer{}}))
		assert.Error(t, r.Register(Definition{Type: "x", Params: []string{"id"}}))
		assert.Error(t, r.Register(Definition{Type: "x", Decomposer: &EnergyDecomposer{}}))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := r.Get("spacecost")
		assert.ErrorIs(t, err, domain.ErrUnknownReport)
	})
}

func TestDefaultRegistry(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	defs := r.List()
	types := make([]string, 0, len(defs))
	for _, d := range defs {
		types = append(types, d.Type)
	}
	assert.Equal(t, []string{
		"energystoragepowerstationreportingparameters",
		"metercomparison",
		"meterenergy",
		"storecarbon",
		"tenantstatistics",
	}, types)

	cmp, err := r.Get("metercomparison")
	require.NoError(t, err)
	assert.Equal(t, []string{"meterid1", "meterid2"}, cmp.Params)
	assert.False(t, cmp.BasePeriod)

	ess, err := r.Get("energystoragepowerstationreportingparameters")
	require.NoError(t, err)
	assert.False(t, ess.PeriodType)
	assert.True(t, ess.AutoSubmit)
	assert.Equal(t, domain.EntityKindEnergyStoragePowerStations, ess.EntityKind)
}
