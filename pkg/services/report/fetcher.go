package report

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/metrics"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/services/period"
	"github.com/de-tools/ems-atlas/pkg/store/client"
	"github.com/rs/zerolog"
)

// Request is one submission: the selected entity of each slot and the period query.
type Request struct {
	EntityIDs []int64
	Period    url.Values
}

// State mirrors the submit button, spinner and result widgets of a report view.
type State struct {
	Busy           bool
	SubmitEnabled  bool
	ResultsVisible bool
	ExportVisible  bool
	Result         *domain.ReportViewModel
}

// Fetcher submits one report type and keeps the latest successful result.
type Fetcher struct {
	backend client.BackendClient
	def     Definition

	mu         sync.Mutex
	state      State
	generation uint64
}

func NewFetcher(backend client.BackendClient, def Definition) *Fetcher {
	return &Fetcher{
		backend: backend,
		def:     def,
		state:   State{SubmitEnabled: true},
	}
}

func (f *Fetcher) Definition() Definition {
	return f.def
}

func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit requests the report and decomposes the answer. The previous result is cleared
// as soon as the request starts and stays hidden when it fails. A nil result with a nil
// error means the answer arrived after a newer submission or a Cancel and was dropped.
func (f *Fetcher) Submit(ctx context.Context, creds domain.Credentials, req Request, tr i18n.Translator) (*domain.ReportViewModel, error) {
	logger := zerolog.Ctx(ctx).With().Str("report", f.def.Type).Logger()

	params, err := f.params(req, tr)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.state.Busy {
		f.mu.Unlock()
		return nil, domain.ErrSubmissionInProgress
	}
	f.generation++
	gen := f.generation
	f.state = State{Busy: true}
	f.mu.Unlock()

	logger.Debug().Str("query", params.Encode()).Msg("submitting report")
	body, err := f.backend.GetReport(ctx, creds, f.def.Type, params)

	var vm *domain.ReportViewModel
	if err == nil {
		vm, err = f.def.Decomposer.Decompose(body, tr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		metrics.ReportSubmissionsTotal.WithLabelValues(f.def.Type, metrics.OutcomeStale).Inc()
		logger.Debug().Uint64("generation", gen).Msg("dropping stale report")
		return nil, nil
	}

	if err != nil {
		f.state = State{SubmitEnabled: true}
		metrics.ReportSubmissionsTotal.WithLabelValues(f.def.Type, submissionOutcome(err)).Inc()
		logger.Warn().Err(err).Msg("report submission failed")
		return nil, fmt.Errorf("failed to fetch %s report: %w", f.def.Type, err)
	}

	vm.ReportType = f.def.Type
	if vm.Export != nil {
		vm.Export.FileName = f.def.FileName
	}
	f.state = State{
		SubmitEnabled:  true,
		ResultsVisible: true,
		ExportVisible:  vm.Export != nil,
		Result:         vm,
	}
	metrics.ReportSubmissionsTotal.WithLabelValues(f.def.Type, metrics.OutcomeSuccess).Inc()
	logger.Info().Int("rows", len(vm.Table.Rows)).Msg("report loaded")
	return vm, nil
}

// Cancel abandons the submission in flight, if any. Its answer will be dropped.
func (f *Fetcher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	if f.state.Busy {
		f.state = State{SubmitEnabled: true}
	}
}

// Export returns the payload of the last successful fetch.
func (f *Fetcher) Export() (*domain.ExportPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Result == nil || f.state.Result.Export == nil {
		return nil, domain.ErrNoExportPayload
	}
	return f.state.Result.Export, nil
}

func (f *Fetcher) params(req Request, tr i18n.Translator) (url.Values, error) {
	if len(req.EntityIDs) != len(f.def.Params) {
		return nil, fmt.Errorf("%w: %s needs %d selections, got %d",
			domain.ErrNoSelection, f.def.Type, len(f.def.Params), len(req.EntityIDs))
	}

	params := url.Values{}
	for i, name := range f.def.Params {
		if req.EntityIDs[i] <= 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoSelection, name)
		}
		params.Set(name, strconv.FormatInt(req.EntityIDs[i], 10))
	}
	for k, v := range req.Period {
		params[k] = append([]string(nil), v...)
	}
	if tr != nil {
		params.Set(period.ParamLanguage, tr.Language())
	}
	return params, nil
}

func submissionOutcome(err error) string {
	if errors.Is(err, domain.ErrRequestTimeout) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeFailure
}
