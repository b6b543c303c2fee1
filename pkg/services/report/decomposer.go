package report

import (
	"encoding/json"
	"fmt"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/models/store"
)

// Decomposer turns a 2xx report body into the view model of its widgets.
type Decomposer interface {
	Decompose(body json.RawMessage, tr i18n.Translator) (*domain.ReportViewModel, error)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// entityBlock pulls the descriptor object stored under key, if any.
func entityBlock(body json.RawMessage, key string) (map[string]any, error) {
	if key == "" {
		return nil, nil
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, malformed("report body: %v", err)
	}
	raw, ok := root[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var entity map[string]any
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, malformed("%s block: %v", key, err)
	}
	return entity, nil
}

func exportPayload(encoded, fileName string) *domain.ExportPayload {
	if encoded == "" {
		return nil
	}
	return &domain.ExportPayload{
		Base64:   encoded,
		MIMEType: domain.SpreadsheetMIMEType,
		FileName: fileName,
	}
}

// parameterSeries maps a parameters block, numbering keys from offset.
func parameterSeries(p *store.ParameterBlock, offset int) ([]domain.Series, error) {
	if p == nil {
		return nil, nil
	}
	if len(p.Timestamps) != len(p.Names) || len(p.Values) != len(p.Names) {
		return nil, malformed("parameters: %d names, %d timestamp series, %d value series",
			len(p.Names), len(p.Timestamps), len(p.Values))
	}

	series := make([]domain.Series, 0, len(p.Names))
	for i, name := range p.Names {
		if len(p.Timestamps[i]) != len(p.Values[i]) {
			return nil, malformed("parameter %q: %d timestamps, %d values", name, len(p.Timestamps[i]), len(p.Values[i]))
		}
		series = append(series, domain.Series{
			Key:        seriesKey("a", offset+i),
			Name:       name,
			Timestamps: p.Timestamps[i],
			Values:     p.Values[i],
		})
	}
	return series, nil
}
