package adapters

import (
	"github.com/de-tools/ems-atlas/pkg/models/api"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
)

func MapReportDomainToApi(vm *domain.ReportViewModel) *api.Report {
	if vm == nil {
		return nil
	}

	report := &api.Report{
		ReportType:      vm.ReportType,
		Entity:          vm.Entity,
		Cards:           make([]api.SummaryCard, 0, len(vm.Cards)),
		BaseSeries:      MapSeriesDomainToApi(vm.BaseSeries),
		ReportingSeries: MapSeriesDomainToApi(vm.ReportingSeries),
		Parameters:      MapSeriesDomainToApi(vm.Parameters),
		Columns:         make([]api.Column, 0, len(vm.Table.Columns)),
		Rows:            make([]map[string]any, 0, len(vm.Table.Rows)),
	}

	for _, c := range vm.Cards {
		report.Cards = append(report.Cards, api.SummaryCard{
			Name:                c.Name,
			Unit:                c.Unit,
			Subtotal:            c.Subtotal,
			IncrementRate:       c.IncrementRate,
			SubtotalPerUnitArea: c.SubtotalPerUnitArea,
		})
	}

	if len(vm.Shares) > 0 {
		report.Shares = make(map[string][]api.ShareSlice, len(vm.Shares))
		for name, slices := range vm.Shares {
			out := make([]api.ShareSlice, 0, len(slices))
			for _, s := range slices {
				out = append(out, api.ShareSlice{ID: s.ID, Name: s.Name, Value: s.Value, Color: s.Color})
			}
			report.Shares[name] = out
		}
	}

	for _, c := range vm.Table.Columns {
		report.Columns = append(report.Columns, api.Column{DataField: c.Field, Text: c.Text, Sort: true})
	}
	for _, r := range vm.Table.Rows {
		report.Rows = append(report.Rows, MapRowDomainToApi(r))
	}

	return report
}

func MapSeriesDomainToApi(series []domain.Series) []api.Series {
	result := make([]api.Series, 0, len(series))
	for _, s := range series {
		result = append(result, api.Series{
			Key:        s.Key,
			Name:       s.Name,
			Unit:       s.Unit,
			Timestamps: s.Timestamps,
			Values:     s.Values,
			Subtotal:   s.Subtotal,
			Rates:      s.Rates,
			Statistics: s.Statistics,
		})
	}
	return result
}

// MapRowDomainToApi flattens a table row into the {id, field: value} object the
// table widget consumes. Null cells become JSON null.
func MapRowDomainToApi(row domain.Row) map[string]any {
	out := make(map[string]any, len(row.Cells)+1)
	out["id"] = row.ID
	for field, cell := range row.Cells {
		switch {
		case cell.Number != nil:
			out[field] = *cell.Number
		case cell.Text != nil:
			out[field] = *cell.Text
		default:
			out[field] = nil
		}
	}
	return out
}
