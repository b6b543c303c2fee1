package report

import (
	"encoding/json"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/models/store"
)

// ComparisonDecomposer reads the two-meter comparison report.
type ComparisonDecomposer struct{}

func (d *ComparisonDecomposer) Decompose(body json.RawMessage, tr i18n.Translator) (*domain.ReportViewModel, error) {
	var payload store.ComparisonReport
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformed("comparison report: %v", err)
	}
	if payload.Meter1 == nil || payload.Meter2 == nil {
		return nil, malformed("comparison report: meter1 and meter2 are required")
	}
	if payload.ReportingPeriod1 == nil || payload.ReportingPeriod2 == nil {
		return nil, malformed("comparison report: reporting_period1 and reporting_period2 are required")
	}
	diff := payload.Diff
	if diff == nil {
		diff = &store.ComparisonPeriod{}
	}
	for name, p := range map[string]*store.ComparisonPeriod{
		"reporting_period1": payload.ReportingPeriod1,
		"reporting_period2": payload.ReportingPeriod2,
		"diff":              diff,
	} {
		if len(p.Timestamps) != len(p.Values) {
			return nil, malformed("%s: %d timestamps, %d values", name, len(p.Timestamps), len(p.Values))
		}
	}

	first, err := parameterSeries(payload.Parameters1, 0)
	if err != nil {
		return nil, err
	}
	second, err := parameterSeries(payload.Parameters2, len(first))
	if err != nil {
		return nil, err
	}

	m1, m2 := payload.Meter1, payload.Meter2
	diffName := i18n.Interpolate(tr.T("Reporting Period Difference CATEGORY UNIT"), map[string]string{
		"CATEGORY": m1.EnergyCategoryName,
		"UNIT":     "(" + m1.UnitOfMeasure + ")",
	})

	vm := &domain.ReportViewModel{
		Entity: map[string]any{
			"meter1": meterEntity(m1),
			"meter2": meterEntity(m2),
		},
		Cards: []domain.SummaryCard{
			{Name: m1.Name + " " + m1.EnergyCategoryName, Unit: m1.UnitOfMeasure, Subtotal: fixed2(payload.ReportingPeriod1.TotalInCategory)},
			{Name: m2.Name + " " + m2.EnergyCategoryName, Unit: m2.UnitOfMeasure, Subtotal: fixed2(payload.ReportingPeriod2.TotalInCategory)},
			{Name: diffName, Unit: m1.UnitOfMeasure, Subtotal: fixed2(diff.TotalInCategory)},
		},
		ReportingSeries: []domain.Series{
			comparisonSeries("a0", m1.Name+" "+m1.EnergyCategoryName, m1.UnitOfMeasure, payload.ReportingPeriod1),
			comparisonSeries("a1", m2.Name+" "+m2.EnergyCategoryName, m2.UnitOfMeasure, payload.ReportingPeriod2),
			comparisonSeries("a2", diffName, m1.UnitOfMeasure, diff),
		},
		Parameters: append(first, second...),
		Table:      comparisonTable(m1, m2, diffName, payload.ReportingPeriod1, payload.ReportingPeriod2, diff, tr),
		Export:     exportPayload(payload.ExcelBytesBase64, ""),
	}
	return vm, nil
}

func meterEntity(m *store.MeterDescriptor) map[string]any {
	return map[string]any{
		"name":                 m.Name,
		"energy_category_id":   m.EnergyCategoryID,
		"energy_category_name": m.EnergyCategoryName,
		"unit_of_measure":      m.UnitOfMeasure,
	}
}

func comparisonSeries(key, name, unit string, p *store.ComparisonPeriod) domain.Series {
	return domain.Series{
		Key:        key,
		Name:       name,
		Unit:       unit,
		Timestamps: p.Timestamps,
		Values:     p.Values,
		Subtotal:   p.TotalInCategory,
	}
}

// comparisonTable has one row per reporting_period1 timestamp and a trailing total row.
func comparisonTable(m1, m2 *store.MeterDescriptor, diffName string, p1, p2, diff *store.ComparisonPeriod, tr i18n.Translator) domain.Table {
	columns := []domain.Column{
		{Field: "startdatetime", Text: tr.T("Datetime")},
		{Field: "a0", Text: label(m1.Name+" "+m1.EnergyCategoryName, m1.UnitOfMeasure), Numeric: true},
		{Field: "a1", Text: label(m2.Name+" "+m2.EnergyCategoryName, m2.UnitOfMeasure), Numeric: true},
		{Field: "a2", Text: diffName, Numeric: true},
	}

	rows := make([]domain.Row, 0, len(p1.Timestamps)+1)
	for i, ts := range p1.Timestamps {
		rows = append(rows, domain.Row{ID: i, Cells: map[string]domain.Cell{
			"startdatetime": domain.TextCell(ts),
			"a0":            domain.NumberCell(at(p1.Values, i)),
			"a1":            domain.NumberCell(at(p2.Values, i)),
			"a2":            domain.NumberCell(at(diff.Values, i)),
		}})
	}
	rows = append(rows, domain.Row{ID: len(rows), Cells: map[string]domain.Cell{
		"startdatetime": domain.TextCell(tr.T("Total")),
		"a0":            domain.NumberCell(p1.TotalInCategory),
		"a1":            domain.NumberCell(p2.TotalInCategory),
		"a2":            domain.NumberCell(diff.TotalInCategory),
	}})

	return domain.Table{Columns: columns, Rows: rows}
}
