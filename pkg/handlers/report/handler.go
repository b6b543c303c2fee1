package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/ems-atlas/pkg/adapters"
	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/api"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/services/export"
	reports "github.com/de-tools/ems-atlas/pkg/services/report"
	"github.com/de-tools/ems-atlas/pkg/services/view"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ReportView is the part of a view the HTTP surface drives.
type ReportView interface {
	Snapshot() domain.ViewSnapshot
	DrainNotifications() []domain.Notification
	SetScope(ctx context.Context, slot int, path []int64) error
	Search(slot int, keyword string) ([]domain.Entity, error)
	Select(slot int, id int64) error
	SetReportingPeriod(r domain.PeriodRange) error
	SetBasePeriod(r domain.PeriodRange) error
	SetComparisonMode(mode domain.ComparisonMode) error
	SetGranularity(g domain.Granularity) error
	Submit(ctx context.Context) error
	Export() (export.File, error)
}

type Views interface {
	Definitions() []reports.Definition
	Open(ctx context.Context, reportType string) (ReportView, error)
}

type managerViews struct {
	manager *view.Manager
}

// FromManager exposes a view manager to the handler.
func FromManager(m *view.Manager) Views {
	return &managerViews{manager: m}
}

func (m *managerViews) Definitions() []reports.Definition {
	return m.manager.Definitions()
}

func (m *managerViews) Open(ctx context.Context, reportType string) (ReportView, error) {
	v, err := m.manager.Open(ctx, reportType)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Redirects hands out the login redirect a session guard requested.
type Redirects interface {
	Consume() (string, bool)
}

type Handler struct {
	views      Views
	translator i18n.Translator
	redirects  Redirects
	location   *time.Location
}

func NewHandler(views Views, translator i18n.Translator, redirects Redirects) *Handler {
	return &Handler{
		views:      views,
		translator: translator,
		redirects:  redirects,
		location:   time.Local,
	}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	defs := h.views.Definitions()
	response := make([]api.ReportDefinition, 0, len(defs))
	for _, d := range defs {
		response = append(response, api.ReportDefinition{
			Type:       d.Type,
			EntityKind: string(d.EntityKind),
			Params:     d.Params,
			PeriodType: d.PeriodType,
			BasePeriod: d.BasePeriod,
			FileName:   d.FileName,
		})
	}
	h.writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	v, ok := h.open(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, v)
}

func (h *Handler) SetScope(w http.ResponseWriter, r *http.Request) {
	v, ok := h.open(w, r)
	if !ok {
		return
	}
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}

	var update api.ScopeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadRequest(w, r, "invalid scope body")
		return
	}
	if err := v.SetScope(r.Context(), slot, update.Path); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, v)
}

func (h *Handler) SearchEntities(w http.ResponseWriter, r *http.Request) {
	v, ok := h.open(w, r)
	if !ok {
		return
	}
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}

	entities, err := v.Search(slot, r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, adapters.MapDomainEntitiesToApi(entities))
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	v, ok := h.open(w, r)
	if !ok {
		return
	}
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}

	var update api.SelectionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadRequest(w, r, "invalid selection body")
		return
	}
	if err := v.Select(slot, update.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, v)
}

// SetPeriod applies the comparison mode first so the reporting period derives the
// matching base, and the period type last so an explicit choice wins over escalation.
func (h *Handler) SetPeriod(w http.ResponseWriter, r *http.Request) {
	v, ok := h.open(w, r)
	if !ok {
		return
	}

	var update api.PeriodUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadRequest(w, r, "invalid period body")
		return
	}

	if err := h.applyPeriod(v, update); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, v)
}

func (h *Handler) applyPeriod(v ReportView, update api.PeriodUpdate) error {
	if update.Comparison != "" {
		mode, err := domain.ParseComparisonMode(update.Comparison)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRange, err)
		}
		if err := v.SetComparisonMode(mode); err != nil {
			return err
		}
	}
	if update.Reporting != nil {
		rng, err := adapters.MapPeriodApiToDomain(*update.Reporting, h.location)
		if err != nil {
			return err
		}
		if err := v.SetReportingPeriod(rng); err != nil {
			return err
		}
	}
	if update.Base != nil {
		rng, err := adapters.MapPeriodApiToDomain(*update.Base, h.location)
		if err != nil {
			return err
		}
		if err := v.SetBasePeriod(rng); err != nil {
			return err
		}
	}
	if update.Granularity != "" {
		g, err := domain.ParseGranularity(update.Granularity)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRange, err)
		}
		if err := v.SetGranularity(g); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	v, ok := h.open(w, r)
	if !ok {
		return
	}
	if err := v.Submit(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r, v)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	v, ok := h.open(w, r)
	if !ok {
		return
	}
	file, err := v.Export()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logger.Error().Err(err).Str("file", file.Name).Msg("failed to write export")
	}
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) (ReportView, bool) {
	v, err := h.views.Open(r.Context(), chi.URLParam(r, "report"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return v, true
}

func (h *Handler) slot(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("slot")
	if raw == "" {
		return 0, true
	}
	slot, err := strconv.Atoi(raw)
	if err != nil || slot < 0 {
		h.writeBadRequest(w, r, "invalid slot")
		return 0, false
	}
	return slot, true
}

func (h *Handler) writeState(w http.ResponseWriter, r *http.Request, v ReportView) {
	snapshot := v.Snapshot()
	snapshot.Notifications = v.DrainNotifications()
	h.writeJSON(w, r, http.StatusOK, adapters.MapViewDomainToApi(snapshot))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	status := statusOf(err)
	description := h.translator.T(domain.NotificationKey(err))

	if status == http.StatusUnauthorized {
		target := h.redirectTarget()
		logger.Info().Err(err).Str("redirect", target).Msg("session is not valid")
		h.writeJSON(w, r, status, api.Redirect{RedirectURL: target, Description: description})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	h.writeJSON(w, r, status, api.Error{Title: http.StatusText(status), Description: description})
}

// redirectTarget falls back to the login page when the 401 came from the backend
// rather than from the guard.
func (h *Handler) redirectTarget() string {
	if h.redirects != nil {
		if url, ok := h.redirects.Consume(); ok && url != "" {
			return url
		}
	}
	return domain.LoginRedirectURL
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, r *http.Request, title string) {
	h.writeJSON(w, r, http.StatusBadRequest, api.Error{Title: title, Description: title})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func statusOf(err error) int {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrSessionInvalid),
		errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownReport), errors.Is(err, domain.ErrNoExportPayload):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidScope),
		errors.Is(err, domain.ErrNoSelection),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrBasePeriodLocked):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRequestTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr),
		errors.Is(err, domain.ErrTransport),
		errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, view.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
