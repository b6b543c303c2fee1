package report

import (
	"encoding/json"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/models/store"
)

const electricityCategoryID = 1

// Share chart names in ReportViewModel.Shares.
const (
	ShareTimeOfUse = "time_of_use"
	ShareCategory  = "category"
)

var timeOfUseNames = []string{"Top-Peak", "On-Peak", "Mid-Peak", "Off-Peak", "Deep"}

// EnergyDecomposer reads the per-category period reports (energy, carbon, statistics).
// The reporting block is read from reporting_period, or from the root when absent.
type EnergyDecomposer struct {
	EntityKey string
}

func (d *EnergyDecomposer) Decompose(body json.RawMessage, tr i18n.Translator) (*domain.ReportViewModel, error) {
	var payload store.EnergyReport
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformed("energy report: %v", err)
	}

	reporting := &payload.PeriodBlock
	if payload.ReportingPeriod != nil {
		reporting = payload.ReportingPeriod
	}
	if err := validateBlock("reporting_period", reporting, true); err != nil {
		return nil, err
	}
	if payload.BasePeriod != nil {
		if err := validateBlock("base_period", payload.BasePeriod, false); err != nil {
			return nil, err
		}
	}

	entity, err := entityBlock(body, d.EntityKey)
	if err != nil {
		return nil, err
	}
	params, err := parameterSeries(payload.Parameters, 0)
	if err != nil {
		return nil, err
	}

	vm := &domain.ReportViewModel{
		Entity:          entity,
		Cards:           cards(reporting, tr),
		ReportingSeries: reportingSeries(reporting),
		BaseSeries:      baseSeries(payload.BasePeriod, reporting),
		Parameters:      params,
		Shares:          shares(reporting, tr),
		Export:          exportPayload(payload.ExcelBytesBase64, ""),
	}

	if hasTimestamps(payload.BasePeriod) {
		vm.Table = pairedTable(payload.BasePeriod, reporting, tr)
	} else {
		vm.Table = singlePeriodTable(reporting, tr)
	}
	return vm, nil
}

// validateBlock checks that index i of names, units, timestamps and values describe
// the same series.
func validateBlock(name string, b *store.PeriodBlock, requireNames bool) error {
	if requireNames && b.Names == nil {
		return malformed("%s: names missing", name)
	}
	if len(b.Timestamps) != len(b.Values) {
		return malformed("%s: %d timestamp series, %d value series", name, len(b.Timestamps), len(b.Values))
	}
	if !requireNames {
		for i := range b.Timestamps {
			if len(b.Timestamps[i]) != len(b.Values[i]) {
				return malformed("%s: series %d has %d timestamps, %d values", name, i, len(b.Timestamps[i]), len(b.Values[i]))
			}
		}
		return nil
	}

	n := len(b.Names)
	if len(b.Units) != n || len(b.Timestamps) != n {
		return malformed("%s: %d names, %d units, %d series", name, n, len(b.Units), len(b.Timestamps))
	}
	if b.Subtotals != nil && len(b.Subtotals) != n {
		return malformed("%s: %d names, %d subtotals", name, n, len(b.Subtotals))
	}
	if b.Rates != nil && len(b.Rates) != n {
		return malformed("%s: %d names, %d rate series", name, n, len(b.Rates))
	}
	for i := range b.Timestamps {
		if len(b.Timestamps[i]) != len(b.Values[i]) {
			return malformed("%s: %q has %d timestamps, %d values", name, b.Names[i], len(b.Timestamps[i]), len(b.Values[i]))
		}
	}
	return nil
}

func hasTimestamps(b *store.PeriodBlock) bool {
	if b == nil {
		return false
	}
	for _, ts := range b.Timestamps {
		if len(ts) > 0 {
			return true
		}
	}
	return false
}

func cards(b *store.PeriodBlock, tr i18n.Translator) []domain.SummaryCard {
	result := make([]domain.SummaryCard, 0, len(b.Names)+1)
	for i, name := range b.Names {
		card := domain.SummaryCard{
			Name:     name,
			Unit:     b.Units[i],
			Subtotal: fixed2(at(b.Subtotals, i)),
		}
		if b.IncrementRates != nil {
			card.IncrementRate = incrementRate(at(b.IncrementRates, i))
		}
		if b.SubtotalsPerUnitArea != nil {
			card.SubtotalPerUnitArea = fixed2(at(b.SubtotalsPerUnitArea, i))
		}
		result = append(result, card)
	}

	if b.Total != nil {
		result = append(result, domain.SummaryCard{
			Name:                tr.T("Total"),
			Unit:                b.TotalUnit,
			Subtotal:            fixed2(b.Total),
			IncrementRate:       incrementRate(b.TotalIncrementRate),
			SubtotalPerUnitArea: fixed2(b.TotalPerUnitArea),
		})
	}
	return result
}

func reportingSeries(b *store.PeriodBlock) []domain.Series {
	series := make([]domain.Series, 0, len(b.Names))
	for i, name := range b.Names {
		s := domain.Series{
			Key:        seriesKey("a", i),
			Name:       name,
			Unit:       b.Units[i],
			Timestamps: b.Timestamps[i],
			Values:     b.Values[i],
			Subtotal:   at(b.Subtotals, i),
			Statistics: statistics(b, i),
		}
		if i < len(b.Rates) {
			s.Rates = make([]string, 0, len(b.Rates[i]))
			for _, r := range b.Rates[i] {
				s.Rates = append(s.Rates, rate(r))
			}
		}
		series = append(series, s)
	}
	return series
}

// baseSeries shares names and units with the reporting block.
func baseSeries(base, reporting *store.PeriodBlock) []domain.Series {
	if base == nil {
		return nil
	}
	series := make([]domain.Series, 0, len(base.Timestamps))
	for i := range base.Timestamps {
		name, unit := stringAt(base.Names, i), stringAt(base.Units, i)
		if name == "" {
			name, unit = stringAt(reporting.Names, i), stringAt(reporting.Units, i)
		}
		series = append(series, domain.Series{
			Key:        seriesKey("a", i),
			Name:       name,
			Unit:       unit,
			Timestamps: base.Timestamps[i],
			Values:     base.Values[i],
			Subtotal:   at(base.Subtotals, i),
			Statistics: statistics(base, i),
		})
	}
	return series
}

func statistics(b *store.PeriodBlock, i int) map[string]*float64 {
	stats := map[string][]*float64{
		"mean":     b.Means,
		"median":   b.Medians,
		"minimum":  b.Minimums,
		"maximum":  b.Maximums,
		"stdev":    b.Stdevs,
		"variance": b.Variances,
	}
	var result map[string]*float64
	for name, values := range stats {
		if i >= len(values) {
			continue
		}
		if result == nil {
			result = make(map[string]*float64, len(stats))
		}
		result[name] = values[i]
	}
	return result
}

func shares(b *store.PeriodBlock, tr i18n.Translator) map[string][]domain.ShareSlice {
	result := make(map[string][]domain.ShareSlice)

	var tou []domain.ShareSlice
	for i, categoryID := range b.EnergyCategoryIDs {
		if categoryID != electricityCategoryID {
			continue
		}
		peaks := [][]*float64{b.TopPeaks, b.OnPeaks, b.MidPeaks, b.OffPeaks, b.Deeps}
		for j, name := range timeOfUseNames {
			tou = append(tou, domain.ShareSlice{
				ID:    j + 1,
				Name:  tr.T(name),
				Value: at(peaks[j], i),
				Color: colorAt(j),
			})
		}
	}
	if len(tou) > 0 {
		result[ShareTimeOfUse] = tou
	}

	if b.Subtotals != nil {
		category := make([]domain.ShareSlice, 0, len(b.Names))
		for i, name := range b.Names {
			category = append(category, domain.ShareSlice{
				ID:    i,
				Name:  name,
				Value: at(b.Subtotals, i),
				Color: colorAt(i),
			})
		}
		result[ShareCategory] = category
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func singlePeriodTable(b *store.PeriodBlock, tr i18n.Translator) domain.Table {
	withTotal := b.TotalUnit != ""

	columns := []domain.Column{{Field: "startdatetime", Text: tr.T("Datetime")}}
	for i, name := range b.Names {
		columns = append(columns, domain.Column{Field: seriesKey("a", i), Text: label(name, b.Units[i]), Numeric: true})
	}
	if withTotal {
		columns = append(columns, domain.Column{Field: "total", Text: label(tr.T("Total"), b.TotalUnit), Numeric: true})
	}

	var rows []domain.Row
	if len(b.Timestamps) > 0 {
		for ti, ts := range b.Timestamps[0] {
			row := domain.Row{ID: ti, Cells: map[string]domain.Cell{"startdatetime": domain.TextCell(ts)}}
			rowValues := make([]*float64, 0, len(b.Values))
			for i := range b.Values {
				v := at(b.Values[i], ti)
				row.Cells[seriesKey("a", i)] = domain.NumberCell(v)
				rowValues = append(rowValues, v)
			}
			if withTotal {
				row.Cells["total"] = domain.NumberCell(zeroSum(rowValues...))
			}
			rows = append(rows, row)
		}
	}

	subtotal := domain.Row{ID: len(rows), Cells: map[string]domain.Cell{"startdatetime": domain.TextCell(tr.T("Subtotal"))}}
	for i := range b.Names {
		subtotal.Cells[seriesKey("a", i)] = domain.NumberCell(at(b.Subtotals, i))
	}
	if withTotal {
		subtotal.Cells["total"] = domain.NumberCell(zeroSum(b.Subtotals...))
	}
	rows = append(rows, subtotal)

	return domain.Table{Columns: columns, Rows: rows}
}

// pairedTable lays base and reporting values side by side by row index, padding the
// shorter period with null cells.
func pairedTable(base, reporting *store.PeriodBlock, tr i18n.Translator) domain.Table {
	basePrefix, reportingPrefix := tr.T("Base Period")+" - ", tr.T("Reporting Period")+" - "
	totalText := tr.T("Total")
	if reporting.TotalUnit != "" {
		totalText = label(totalText, reporting.TotalUnit)
	}

	columns := []domain.Column{{Field: "basePeriodDatetime", Text: basePrefix + tr.T("Datetime")}}
	for i := range base.Values {
		name, unit := stringAt(base.Names, i), stringAt(base.Units, i)
		if name == "" {
			name, unit = stringAt(reporting.Names, i), stringAt(reporting.Units, i)
		}
		columns = append(columns, domain.Column{Field: seriesKey("a", i), Text: basePrefix + label(name, unit), Numeric: true})
	}
	columns = append(columns,
		domain.Column{Field: "basePeriodTotal", Text: basePrefix + totalText, Numeric: true},
		domain.Column{Field: "reportingPeriodDatetime", Text: reportingPrefix + tr.T("Datetime")},
	)
	for i, name := range reporting.Names {
		columns = append(columns, domain.Column{Field: seriesKey("b", i), Text: reportingPrefix + label(name, reporting.Units[i]), Numeric: true})
	}
	columns = append(columns, domain.Column{Field: "reportingPeriodTotal", Text: reportingPrefix + totalText, Numeric: true})

	var baseTimestamps, reportingTimestamps []string
	if len(base.Timestamps) > 0 {
		baseTimestamps = base.Timestamps[0]
	}
	if len(reporting.Timestamps) > 0 {
		reportingTimestamps = reporting.Timestamps[0]
	}
	length := max(len(baseTimestamps), len(reportingTimestamps))

	rows := make([]domain.Row, 0, length+1)
	for ti := 0; ti < length; ti++ {
		row := domain.Row{ID: ti, Cells: map[string]domain.Cell{}}
		fillPeriod(row, "a", "basePeriodDatetime", "basePeriodTotal", baseTimestamps, base.Values, ti)
		fillPeriod(row, "b", "reportingPeriodDatetime", "reportingPeriodTotal", reportingTimestamps, reporting.Values, ti)
		rows = append(rows, row)
	}

	subtotal := domain.Row{ID: len(rows), Cells: map[string]domain.Cell{
		"basePeriodDatetime":      domain.TextCell(tr.T("Subtotal")),
		"reportingPeriodDatetime": domain.TextCell(tr.T("Subtotal")),
		"basePeriodTotal":         domain.NumberCell(zeroSum(base.Subtotals...)),
		"reportingPeriodTotal":    domain.NumberCell(zeroSum(reporting.Subtotals...)),
	}}
	for i := range base.Values {
		subtotal.Cells[seriesKey("a", i)] = domain.NumberCell(at(base.Subtotals, i))
	}
	for i := range reporting.Values {
		subtotal.Cells[seriesKey("b", i)] = domain.NumberCell(at(reporting.Subtotals, i))
	}
	rows = append(rows, subtotal)

	return domain.Table{Columns: columns, Rows: rows}
}

func fillPeriod(row domain.Row, prefix, datetimeField, totalField string, timestamps []string, values [][]*float64, ti int) {
	rowValues := make([]*float64, 0, len(values))
	for i := range values {
		v := at(values[i], ti)
		row.Cells[seriesKey(prefix, i)] = domain.NumberCell(v)
		rowValues = append(rowValues, v)
	}

	if ti >= len(timestamps) {
		row.Cells[datetimeField] = domain.Cell{}
		row.Cells[totalField] = domain.Cell{}
		return
	}
	row.Cells[datetimeField] = domain.TextCell(timestamps[ti])
	row.Cells[totalField] = domain.NumberCell(zeroSum(rowValues...))
}
