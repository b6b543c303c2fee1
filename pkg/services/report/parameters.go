package report

import (
	"encoding/json"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/models/store"
)

// ParametersDecomposer reads reports made only of an entity block and parameter
// trend lines, such as the energy storage power station parameters.
type ParametersDecomposer struct {
	EntityKey string
}

func (d *ParametersDecomposer) Decompose(body json.RawMessage, tr i18n.Translator) (*domain.ReportViewModel, error) {
	var payload store.ParametersReport
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformed("parameters report: %v", err)
	}

	entity, err := entityBlock(body, d.EntityKey)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, malformed("parameters report: %s block missing", d.EntityKey)
	}

	params, err := parameterSeries(payload.Parameters, 0)
	if err != nil {
		return nil, err
	}

	return &domain.ReportViewModel{
		Entity:     entity,
		Parameters: params,
		Table:      parametersTable(params, tr),
		Export:     exportPayload(payload.ExcelBytesBase64, ""),
	}, nil
}

// parametersTable lists every parameter sample keyed by the first parameter's timestamps.
func parametersTable(params []domain.Series, tr i18n.Translator) domain.Table {
	columns := []domain.Column{{Field: "startdatetime", Text: tr.T("Datetime")}}
	for _, p := range params {
		columns = append(columns, domain.Column{Field: p.Key, Text: p.Name, Numeric: true})
	}
	if len(params) == 0 {
		return domain.Table{Columns: columns}
	}

	rows := make([]domain.Row, 0, len(params[0].Timestamps))
	for i, ts := range params[0].Timestamps {
		row := domain.Row{ID: i, Cells: map[string]domain.Cell{"startdatetime": domain.TextCell(ts)}}
		for _, p := range params {
			row.Cells[p.Key] = domain.NumberCell(at(p.Values, i))
		}
		rows = append(rows, row)
	}
	return domain.Table{Columns: columns, Rows: rows}
}
