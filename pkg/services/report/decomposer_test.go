package report

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pairedStoreCarbon = `{
  "store": {"id": 5, "name": "Store 5", "area": 120.0},
  "base_period": {
    "names": ["Electricity"],
    "units": ["kWh"],
    "timestamps": [["2023-12-01T00:00:00", "2023-12-02T00:00:00", "2023-12-03T00:00:00"]],
    "values": [[1.5, null, 2.5]],
    "subtotals": [4.0]
  },
  "reporting_period": {
    "names": ["Electricity"],
    "units": ["kWh"],
    "energy_category_ids": [1],
    "timestamps": [["2024-01-01T00:00:00", "2024-01-02T00:00:00"]],
    "values": [[10.0, 20.0]],
    "rates": [[0.1234, null]],
    "subtotals": [30.0],
    "increment_rates": [0.065],
    "subtotals_per_unit_area": [0.25],
    "toppeaks": [1.0], "onpeaks": [2.0], "midpeaks": [3.0], "offpeaks": [4.0], "deeps": [5.0],
    "means": [15.0],
    "maximums": [20.0],
    "total": 30.0,
    "total_unit": "kgCO2e",
    "total_increment_rate": null,
    "total_per_unit_area": 0.25
  },
  "parameters": {
    "names": ["Outdoor temperature"],
    "timestamps": [["2024-01-01T00:00:00", "2024-01-02T00:00:00"]],
    "values": [[-2.5, 1.0]]
  },
  "excel_bytes_base64": "UEsDBBQ="
}`

const meterComparison = `{
  "meter1": {"name": "Main", "energy_category_id": 1, "energy_category_name": "Electricity", "unit_of_measure": "kWh"},
  "meter2": {"name": "Chiller", "energy_category_id": 1, "energy_category_name": "Electricity", "unit_of_measure": "kWh"},
  "reporting_period1": {"total_in_category": 30.0, "timestamps": ["2024-01-01T00:00:00", "2024-01-02T00:00:00"], "values": [10.0, 20.0]},
  "reporting_period2": {"total_in_category": 12.0, "timestamps": ["2024-01-01T00:00:00", "2024-01-02T00:00:00"], "values": [5.0, 7.0]},
  "diff": {"total_in_category": 18.0, "timestamps": ["2024-01-01T00:00:00", "2024-01-02T00:00:00"], "values": [5.0, 13.0]},
  "parameters1": {"names": ["Voltage"], "timestamps": [["2024-01-01T00:00:00"]], "values": [[220.0]]},
  "parameters2": {"names": ["Current"], "timestamps": [["2024-01-01T00:00:00"]], "values": [[12.0]]},
  "excel_bytes_base64": "UEsDBBQ="
}`

const essParameters = `{
  "energy_storage_power_station": {
    "id": 3, "name": "ESS North", "serial_number": "ESS-0003", "address": "1 Harbour Road",
    "rated_capacity": 500.0, "rated_power": 250.0, "latitude": 31.2, "longitude": 121.5
  },
  "parameters": {
    "names": ["State of charge", "Power"],
    "timestamps": [["2024-01-01T00:00:00", "2024-01-01T00:15:00"], ["2024-01-01T00:00:00", "2024-01-01T00:15:00"]],
    "values": [[55.0, 56.5], [120.0, null]]
  }
}`

func translator(t *testing.T) i18n.Translator {
	t.Helper()
	c, err := i18n.NewCatalog("")
	require.NoError(t, err)
	return c.For("en")
}

func number(t *testing.T, c domain.Cell) float64 {
	t.Helper()
	require.NotNil(t, c.Number, "expected a numeric cell")
	return *c.Number
}

func TestEnergyDecomposer_ThreeAlignedSeries(t *testing.T) {
	body := `{
	  "names": ["Electricity", "Water", "Gas"],
	  "units": ["kWh", "m3", "m3"],
	  "timestamps": [["2024-01-01T00:00:00", "2024-01-02T00:00:00"], ["2024-01-01T00:00:00", "2024-01-02T00:00:00"], ["2024-01-01T00:00:00", "2024-01-02T00:00:00"]],
	  "values": [[1, 2], [3, 4], [5, 6]],
	  "subtotals": [3, 7, 11]
	}`

	vm, err := (&EnergyDecomposer{}).Decompose(json.RawMessage(body), translator(t))
	require.NoError(t, err)

	require.Len(t, vm.ReportingSeries, 3)
	assert.Equal(t, "Water (m3)", vm.ReportingSeries[1].Label())
	require.Len(t, vm.Table.Rows, 3)

	for ti := 0; ti < 2; ti++ {
		row := vm.Table.Rows[ti]
		assert.Equal(t, float64(1+ti), number(t, row.Cells["a0"]))
		assert.Equal(t, float64(3+ti), number(t, row.Cells["a1"]))
		assert.Equal(t, float64(5+ti), number(t, row.Cells["a2"]))
	}

	subtotal := vm.Table.Rows[2]
	assert.Equal(t, "Subtotal", subtotal.Cells["startdatetime"].Format())
	assert.Equal(t, float64(11), number(t, subtotal.Cells["a2"]))

	assert.Equal(t, []string{"startdatetime", "a0", "a1", "a2"}, fields(vm.Table))
	assert.Nil(t, vm.Export)
	assert.Nil(t, vm.BaseSeries)
}

func TestEnergyDecomposer_TotalColumn(t *testing.T) {
	body := `{
	  "names": ["Electricity", "Water"],
	  "units": ["kWh", "m3"],
	  "timestamps": [["2024-01-01T00:00:00"], ["2024-01-01T00:00:00"]],
	  "values": [[1.25, null]],
	  "subtotals": [1.25, null],
	  "total_unit": "kgce"
	}`

	_, err := (&EnergyDecomposer{}).Decompose(json.RawMessage(body), translator(t))
	require.ErrorIs(t, err, domain.ErrMalformedResponse)

	body = `{
	  "names": ["Electricity", "Water"],
	  "units": ["kWh", "m3"],
	  "timestamps": [["2024-01-01T00:00:00"], ["2024-01-01T00:00:00"]],
	  "values": [[1.25], [null]],
	  "subtotals": [1.25, null],
	  "total_unit": "kgce"
	}`
	vm, err := (&EnergyDecomposer{}).Decompose(json.RawMessage(body), translator(t))
	require.NoError(t, err)

	assert.Equal(t, "Total (kgce)", vm.Table.Columns[3].Text)
	assert.Equal(t, 1.25, number(t, vm.Table.Rows[0].Cells["total"]))
	assert.True(t, vm.Table.Rows[0].Cells["a1"].IsNull())
	assert.Equal(t, 1.25, number(t, vm.Table.Rows[1].Cells["total"]))
}

func TestEnergyDecomposer_PairedPeriods(t *testing.T) {
	d := &EnergyDecomposer{EntityKey: "store"}
	vm, err := d.Decompose(json.RawMessage(pairedStoreCarbon), translator(t))
	require.NoError(t, err)

	assert.Equal(t, "Store 5", vm.Entity["name"])

	t.Run("cards", func(t *testing.T) {
		require.Len(t, vm.Cards, 2)
		assert.Equal(t, domain.SummaryCard{
			Name:                "Electricity",
			Unit:                "kWh",
			Subtotal:            "30.00",
			IncrementRate:       "6.50%",
			SubtotalPerUnitArea: "0.25",
		}, vm.Cards[0])
		assert.Equal(t, "Total", vm.Cards[1].Name)
		assert.Equal(t, "kgCO2e", vm.Cards[1].Unit)
		assert.Equal(t, "0.00%", vm.Cards[1].IncrementRate)
	})

	t.Run("series", func(t *testing.T) {
		require.Len(t, vm.ReportingSeries, 1)
		assert.Equal(t, []string{"12.34", "0.00"}, vm.ReportingSeries[0].Rates)
		assert.Equal(t, 15.0, *vm.ReportingSeries[0].Statistics["mean"])
		assert.NotContains(t, vm.ReportingSeries[0].Statistics, "median")

		require.Len(t, vm.BaseSeries, 1)
		assert.Equal(t, "Electricity", vm.BaseSeries[0].Name)
		assert.Len(t, vm.BaseSeries[0].Values, 3)

		require.Len(t, vm.Parameters, 1)
		assert.Equal(t, "a0", vm.Parameters[0].Key)
	})

	t.Run("shares", func(t *testing.T) {
		tou := vm.Shares[ShareTimeOfUse]
		require.Len(t, tou, 5)
		assert.Equal(t, 1, tou[0].ID)
		assert.Equal(t, "Top-Peak", tou[0].Name)
		assert.Equal(t, 5.0, *tou[4].Value)

		require.Len(t, vm.Shares[ShareCategory], 1)
		assert.Equal(t, 30.0, *vm.Shares[ShareCategory][0].Value)
	})

	t.Run("table pads the shorter period", func(t *testing.T) {
		assert.Equal(t, []string{
			"basePeriodDatetime", "a0", "basePeriodTotal",
			"reportingPeriodDatetime", "b0", "reportingPeriodTotal",
		}, fields(vm.Table))
		assert.Equal(t, "Base Period - Electricity (kWh)", vm.Table.Columns[1].Text)
		assert.Equal(t, "Reporting Period - Total (kgCO2e)", vm.Table.Columns[5].Text)

		require.Len(t, vm.Table.Rows, 4)

		second := vm.Table.Rows[1]
		assert.True(t, second.Cells["a0"].IsNull())
		assert.Equal(t, 0.0, number(t, second.Cells["basePeriodTotal"]))
		assert.Equal(t, 20.0, number(t, second.Cells["b0"]))

		third := vm.Table.Rows[2]
		assert.Equal(t, "2023-12-03T00:00:00", third.Cells["basePeriodDatetime"].Format())
		assert.True(t, third.Cells["reportingPeriodDatetime"].IsNull())
		assert.True(t, third.Cells["reportingPeriodTotal"].IsNull())
		assert.True(t, third.Cells["b0"].IsNull())

		subtotal := vm.Table.Rows[3]
		assert.Equal(t, "Subtotal", subtotal.Cells["basePeriodDatetime"].Format())
		assert.Equal(t, 4.0, number(t, subtotal.Cells["basePeriodTotal"]))
		assert.Equal(t, 30.0, number(t, subtotal.Cells["reportingPeriodTotal"]))
	})

	require.NotNil(t, vm.Export)
	assert.Equal(t, domain.SpreadsheetMIMEType, vm.Export.MIMEType)
}

func TestEnergyDecomposer_EmptyBaseUsesSingleTable(t *testing.T) {
	body := `{
	  "base_period": {"timestamps": [[]], "values": [[]], "subtotals": [null]},
	  "reporting_period": {
	    "names": ["Electricity"], "units": ["kWh"],
	    "timestamps": [["2024-01-01T00:00:00"]], "values": [[4]], "subtotals": [4]
	  }
	}`

	vm, err := (&EnergyDecomposer{}).Decompose(json.RawMessage(body), translator(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"startdatetime", "a0"}, fields(vm.Table))
	assert.Len(t, vm.Table.Rows, 2)
}

func TestEnergyDecomposer_Malformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"names missing", `{"units": ["kWh"], "timestamps": [[]], "values": [[]]}`},
		{"units misaligned", `{"names": ["A", "B"], "units": ["kWh"], "timestamps": [[], []], "values": [[], []]}`},
		{"values misaligned", `{"names": ["A"], "units": ["kWh"], "timestamps": [["t1", "t2"]], "values": [[1]]}`},
		{"subtotals misaligned", `{"names": ["A"], "units": ["kWh"], "timestamps": [[]], "values": [[]], "subtotals": [1, 2]}`},
		{"base misaligned", `{"names": ["A"], "units": ["kWh"], "timestamps": [[]], "values": [[]], "base_period": {"timestamps": [["t"]], "values": [[]]}}`},
		{"parameters misaligned", `{"names": [], "units": [], "timestamps": [], "values": [], "parameters": {"names": ["p"], "timestamps": [], "values": []}}`},
		{"entity not an object", `{"names": [], "units": [], "timestamps": [], "values": [], "meter": [1]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&EnergyDecomposer{EntityKey: "meter"}).Decompose(json.RawMessage(tc.body), translator(t))
			assert.True(t, errors.Is(err, domain.ErrMalformedResponse), "got %v", err)
		})
	}
}

func TestComparisonDecomposer(t *testing.T) {
	vm, err := (&ComparisonDecomposer{}).Decompose(json.RawMessage(meterComparison), translator(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"startdatetime", "a0", "a1", "a2"}, fields(vm.Table))
	assert.Equal(t, "Main Electricity (kWh)", vm.Table.Columns[1].Text)
	assert.Equal(t, "Reporting Period Difference Electricity (kWh)", vm.Table.Columns[3].Text)

	require.Len(t, vm.Table.Rows, 3)
	assert.Equal(t, 13.0, number(t, vm.Table.Rows[1].Cells["a2"]))
	total := vm.Table.Rows[2]
	assert.Equal(t, "Total", total.Cells["startdatetime"].Format())
	assert.Equal(t, 30.0, number(t, total.Cells["a0"]))
	assert.Equal(t, 12.0, number(t, total.Cells["a1"]))
	assert.Equal(t, 18.0, number(t, total.Cells["a2"]))

	require.Len(t, vm.Cards, 3)
	assert.Equal(t, "18.00", vm.Cards[2].Subtotal)

	require.Len(t, vm.Parameters, 2)
	assert.Equal(t, "a0", vm.Parameters[0].Key)
	assert.Equal(t, "a1", vm.Parameters[1].Key)
	assert.Equal(t, "Current", vm.Parameters[1].Name)

	meter2, ok := vm.Entity["meter2"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Chiller", meter2["name"])
}

func TestComparisonDecomposer_Malformed(t *testing.T) {
	_, err := (&ComparisonDecomposer{}).Decompose(json.RawMessage(`{"meter1": {"name": "Main"}}`), translator(t))
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	body := `{
	  "meter1": {"name": "A"}, "meter2": {"name": "B"},
	  "reporting_period1": {"timestamps": ["t1"], "values": []},
	  "reporting_period2": {"timestamps": [], "values": []}
	}`
	_, err = (&ComparisonDecomposer{}).Decompose(json.RawMessage(body), translator(t))
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestParametersDecomposer(t *testing.T) {
	d := &ParametersDecomposer{EntityKey: "energy_storage_power_station"}
	vm, err := d.Decompose(json.RawMessage(essParameters), translator(t))
	require.NoError(t, err)

	assert.Equal(t, "ESS-0003", vm.Entity["serial_number"])
	assert.Equal(t, 500.0, vm.Entity["rated_capacity"])
	require.Len(t, vm.Parameters, 2)
	assert.Nil(t, vm.Export)

	assert.Equal(t, []string{"startdatetime", "a0", "a1"}, fields(vm.Table))
	require.Len(t, vm.Table.Rows, 2)
	assert.True(t, vm.Table.Rows[1].Cells["a1"].IsNull())

	_, err = d.Decompose(json.RawMessage(`{"parameters": null}`), translator(t))
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestFormat(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	assert.Equal(t, "120.50", fixed2(v(120.5)))
	assert.Equal(t, "0.10", fixed2(v(0.1)))
	assert.Equal(t, "", fixed2(nil))

	assert.Equal(t, "0.00", rate(nil))
	assert.Equal(t, "0.00", rate(v(0)))
	assert.Equal(t, "-5.25", rate(v(-0.0525)))
	assert.Equal(t, "100.00%", incrementRate(v(1)))

	assert.Nil(t, sum(nil, nil))
	assert.Equal(t, 0.3, *sum(v(0.1), nil, v(0.2)))
	assert.Equal(t, 0.0, *zeroSum())

	assert.Equal(t, colorAt(0), colorAt(len(palette)))
}

func fields(table domain.Table) []string {
	out := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		out = append(out, c.Field)
	}
	return out
}
