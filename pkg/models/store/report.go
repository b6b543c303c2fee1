package store

import "encoding/json"

// PeriodBlock is a base_period / reporting_period block. Absent arrays decode as nil,
// empty arrays as non-nil empty slices.
type PeriodBlock struct {
	Names             []string     `json:"names"`
	Units             []string     `json:"units"`
	EnergyCategoryIDs []int64      `json:"energy_category_ids"`
	Timestamps        [][]string   `json:"timestamps"`
	Values            [][]*float64 `json:"values"`
	Rates             [][]*float64 `json:"rates"`
	Subtotals         []*float64   `json:"subtotals"`

	IncrementRates       []*float64 `json:"increment_rates"`
	SubtotalsPerUnitArea []*float64 `json:"subtotals_per_unit_area"`

	TopPeaks []*float64 `json:"toppeaks"`
	OnPeaks  []*float64 `json:"onpeaks"`
	MidPeaks []*float64 `json:"midpeaks"`
	OffPeaks []*float64 `json:"offpeaks"`
	Deeps    []*float64 `json:"deeps"`

	Means     []*float64 `json:"means"`
	Medians   []*float64 `json:"medians"`
	Minimums  []*float64 `json:"minimums"`
	Maximums  []*float64 `json:"maximums"`
	Stdevs    []*float64 `json:"stdevs"`
	Variances []*float64 `json:"variances"`

	Total              *float64 `json:"total"`
	TotalUnit          string   `json:"total_unit"`
	TotalIncrementRate *float64 `json:"total_increment_rate"`
	TotalPerUnitArea   *float64 `json:"total_per_unit_area"`
}

// ParameterBlock carries the associated points/sensors trend lines.
type ParameterBlock struct {
	Names      []string     `json:"names"`
	Timestamps [][]string   `json:"timestamps"`
	Values     [][]*float64 `json:"values"`
}

// EnergyReport is the common shape of per-category energy reports. Simple reports put
// the reporting block fields at the root instead of under reporting_period.
type EnergyReport struct {
	PeriodBlock

	BasePeriod       *PeriodBlock    `json:"base_period"`
	ReportingPeriod  *PeriodBlock    `json:"reporting_period"`
	Parameters       *ParameterBlock `json:"parameters"`
	ExcelBytesBase64 string          `json:"excel_bytes_base64"`
}

// MeterDescriptor describes one meter of a comparison report.
type MeterDescriptor struct {
	Name               string `json:"name"`
	EnergyCategoryID   int64  `json:"energy_category_id"`
	EnergyCategoryName string `json:"energy_category_name"`
	UnitOfMeasure      string `json:"unit_of_measure"`
}

type ComparisonPeriod struct {
	TotalInCategory *float64   `json:"total_in_category"`
	Timestamps      []string   `json:"timestamps"`
	Values          []*float64 `json:"values"`
}

type ComparisonReport struct {
	Meter1           *MeterDescriptor  `json:"meter1"`
	Meter2           *MeterDescriptor  `json:"meter2"`
	ReportingPeriod1 *ComparisonPeriod `json:"reporting_period1"`
	ReportingPeriod2 *ComparisonPeriod `json:"reporting_period2"`
	Diff             *ComparisonPeriod `json:"diff"`
	Parameters1      *ParameterBlock   `json:"parameters1"`
	Parameters2      *ParameterBlock   `json:"parameters2"`
	ExcelBytesBase64 string            `json:"excel_bytes_base64"`
}

type ParametersReport struct {
	Station          map[string]json.RawMessage `json:"energy_storage_power_station"`
	Parameters       *ParameterBlock            `json:"parameters"`
	ExcelBytesBase64 string                     `json:"excel_bytes_base64"`
}
