package view

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/services/report"
	"github.com/de-tools/ems-atlas/pkg/services/session"
	"github.com/de-tools/ems-atlas/pkg/store/client"
	sessionstore "github.com/de-tools/ems-atlas/pkg/store/session"
	"github.com/de-tools/ems-atlas/pkg/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userUUID = "dcdb67d1-6116-4987-916f-6fc6cf2bc0e4"

// stubBackend answers the reporting backend routes and records report queries.
type stubBackend struct {
	mu       sync.Mutex
	entities map[string]string
	tree     func(w http.ResponseWriter, r *http.Request)
	report   func(w http.ResponseWriter, r *http.Request)
	queries  []url.Values
}

func (s *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/spaces/tree", func(w http.ResponseWriter, r *http.Request) {
		if s.tree != nil {
			s.tree(w, r)
			return
		}
		writeTree(w)
	})
	mux.HandleFunc("GET /api/spaces/{id}/{kind}", func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.entities[r.PathValue("id")+"/"+r.PathValue("kind")]
		if !ok {
			body = "[]"
		}
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("GET /api/reports/{type}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.queries = append(s.queries, r.URL.Query())
		s.mu.Unlock()
		s.report(w, r)
	})
	return mux
}

func writeTree(w http.ResponseWriter) {
	_, _ = w.Write([]byte(`{"id":1,"name":"HQ","children":[{"id":2,"name":"Plant","children":[]}]}`))
}

func (s *stubBackend) lastQuery(t *testing.T) url.Values {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.queries)
	return s.queries[len(s.queries)-1]
}

type fixture struct {
	backend    client.BackendClient
	store      sessionstore.Store
	redirect   *session.RedirectState
	translator i18n.Translator
}

func newFixture(t *testing.T, stub *stubBackend, loggedIn bool) *fixture {
	t.Helper()

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	backend, err := client.NewBackendClient(client.DefaultConfig(srv.URL + "/api"))
	require.NoError(t, err)

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := sessionstore.NewStore(db)
	require.NoError(t, err)

	catalog, err := i18n.NewCatalog("")
	require.NoError(t, err)

	f := &fixture{
		backend:    backend,
		store:      store,
		redirect:   &session.RedirectState{},
		translator: catalog.For("en"),
	}
	if loggedIn {
		err := f.guard().Login(context.Background(), domain.Session{UserName: "admin", UserUUID: userUUID, Token: "abc"})
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) guard() *session.Guard {
	return session.NewGuard(f.store, f.redirect, session.SystemClock(), session.GuardConfig{
		TTL:           time.Hour,
		CheckInterval: time.Hour,
	})
}

func (f *fixture) view(t *testing.T, reportType string) *View {
	t.Helper()
	registry, err := report.NewDefaultRegistry()
	require.NoError(t, err)
	def, err := registry.Get(reportType)
	require.NoError(t, err)

	v := New(Config{
		Definition: def,
		Backend:    f.backend,
		Guard:      f.guard(),
		Translator: f.translator,
		Now:        time.Date(2024, 2, 10, 9, 30, 0, 0, time.Local),
	})
	t.Cleanup(v.Close)
	return v
}

func january() domain.PeriodRange {
	return domain.PeriodRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, 1, 31, 23, 59, 59, 0, time.Local),
	}
}

func storeCarbonBody() string {
	timestamps := make([]string, 31)
	values := make([]string, 31)
	for i := range timestamps {
		timestamps[i] = fmt.Sprintf(`"2024-01-%02dT00:00:00"`, i+1)
		values[i] = "3.887"
	}
	return fmt.Sprintf(
		`{"subtotals":[120.5],"names":["Electricity"],"units":["kWh"],"timestamps":[[%s]],"values":[[%s]],"excel_bytes_base64":"UEsDBBQ="}`,
		strings.Join(timestamps, ","), strings.Join(values, ","))
}

func TestView_SubmitAndExport(t *testing.T) {
	stub := &stubBackend{
		entities: map[string]string{"1/stores": `[{"id":5,"name":"Store 5"},{"id":6,"name":"Store 6"}]`},
		report: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(storeCarbonBody()))
		},
	}
	f := newFixture(t, stub, true)
	v := f.view(t, "storecarbon")
	ctx := context.Background()

	require.NoError(t, v.Open(ctx))

	snapshot := v.Snapshot()
	require.Len(t, snapshot.Slots, 1)
	assert.Equal(t, "HQ", snapshot.Slots[0].ScopeLabel)
	require.NotNil(t, snapshot.Slots[0].Selected)
	assert.Equal(t, int64(5), snapshot.Slots[0].Selected.ID)
	assert.True(t, snapshot.SubmitEnabled)
	assert.False(t, snapshot.ResultsVisible)

	require.NoError(t, v.SetReportingPeriod(january()))
	require.NoError(t, v.SetGranularity(domain.GranularityDaily))
	require.NoError(t, v.Submit(ctx))

	query := stub.lastQuery(t)
	assert.Equal(t, "5", query.Get("storeid"))
	assert.Equal(t, "daily", query.Get("periodtype"))
	assert.Equal(t, "2024-01-01T00:00:00", query.Get("reportingperiodstartdatetime"))
	assert.Equal(t, "2024-01-31T23:59:59", query.Get("reportingperiodenddatetime"))
	assert.Equal(t, "2023-12-01T00:00:00", query.Get("baseperiodstartdatetime"))
	assert.Equal(t, "en", query.Get("language"))

	snapshot = v.Snapshot()
	assert.False(t, snapshot.Busy)
	assert.True(t, snapshot.ResultsVisible)
	assert.True(t, snapshot.ExportVisible)
	require.NotNil(t, snapshot.Result)
	require.Len(t, snapshot.Result.Cards, 1)
	assert.Equal(t, "120.50", snapshot.Result.Cards[0].Subtotal)
	assert.Empty(t, snapshot.Notifications)

	file, err := v.Export()
	require.NoError(t, err)
	assert.Equal(t, "storecarbon.xlsx", file.Name)
	assert.Equal(t, domain.SpreadsheetMIMEType, file.MIMEType)
	assert.Equal(t, "PK", string(file.Data[:2]))
}

func TestView_FailedSubmitNotifies(t *testing.T) {
	stub := &stubBackend{
		entities: map[string]string{"1/meters": `[{"id":7,"name":"Main meter"}]`},
		report: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"description": "ERR_INVALID_RANGE"})
		},
	}
	f := newFixture(t, stub, true)
	v := f.view(t, "meterenergy")
	ctx := context.Background()
	require.NoError(t, v.Open(ctx))

	err := v.Submit(ctx)
	require.Error(t, err)

	snapshot := v.Snapshot()
	assert.True(t, snapshot.SubmitEnabled)
	assert.False(t, snapshot.Busy)
	assert.False(t, snapshot.ResultsVisible)
	assert.False(t, snapshot.ExportVisible)
	require.Len(t, snapshot.Notifications, 1)
	assert.Equal(t, "The selected period range is invalid", snapshot.Notifications[0].Message)

	_, err = v.Export()
	assert.ErrorIs(t, err, domain.ErrNoExportPayload)

	drained := v.DrainNotifications()
	assert.Len(t, drained, 2)
	assert.Empty(t, v.DrainNotifications())
}

func TestView_EmptyEntityList(t *testing.T) {
	stub := &stubBackend{
		entities: map[string]string{"2/tenants": `[{"id":11,"name":"Cafe"}]`},
		report:   func(w http.ResponseWriter, r *http.Request) { t.Error("no report expected") },
	}
	f := newFixture(t, stub, true)
	v := f.view(t, "tenantstatistics")
	ctx := context.Background()
	require.NoError(t, v.Open(ctx))

	assert.False(t, v.Snapshot().SubmitEnabled)
	err := v.Submit(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSelection)

	require.NoError(t, v.SetScope(ctx, 0, []int64{1, 2}))
	snapshot := v.Snapshot()
	assert.Equal(t, "HQ/Plant", snapshot.Slots[0].ScopeLabel)
	assert.True(t, snapshot.SubmitEnabled)

	found, err := v.Search(0, "zzz")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.False(t, v.Snapshot().SubmitEnabled)

	found, err = v.Search(0, "")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	err = v.SetScope(ctx, 0, []int64{1, 99})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
	_, err = v.Search(3, "")
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}

func TestView_ComparisonSlots(t *testing.T) {
	stub := &stubBackend{
		entities: map[string]string{"1/meters": `[{"id":7,"name":"Main"},{"id":8,"name":"Chiller"}]`},
		report: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
			  "meter1": {"name": "Main", "energy_category_name": "Electricity", "unit_of_measure": "kWh"},
			  "meter2": {"name": "Chiller", "energy_category_name": "Electricity", "unit_of_measure": "kWh"},
			  "reporting_period1": {"total_in_category": 3, "timestamps": ["2024-01-01T00:00:00"], "values": [3]},
			  "reporting_period2": {"total_in_category": 1, "timestamps": ["2024-01-01T00:00:00"], "values": [1]},
			  "diff": {"total_in_category": 2, "timestamps": ["2024-01-01T00:00:00"], "values": [2]}
			}`))
		},
	}
	f := newFixture(t, stub, true)
	v := f.view(t, "metercomparison")
	ctx := context.Background()
	require.NoError(t, v.Open(ctx))

	require.NoError(t, v.Select(1, 8))
	assert.ErrorIs(t, v.Select(1, 99), domain.ErrNoSelection)
	require.NoError(t, v.Submit(ctx))

	query := stub.lastQuery(t)
	assert.Equal(t, "7", query.Get("meterid1"))
	assert.Equal(t, "8", query.Get("meterid2"))
	assert.False(t, query.Has("baseperiodstartdatetime"))

	snapshot := v.Snapshot()
	require.NotNil(t, snapshot.Result)
	assert.Len(t, snapshot.Result.Table.Rows, 2)
	assert.False(t, snapshot.ExportVisible)
}

func TestView_AutoSubmit(t *testing.T) {
	stub := &stubBackend{
		entities: map[string]string{"1/energystoragepowerstations": `[{"id":3,"name":"ESS North"}]`},
		report: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
			  "energy_storage_power_station": {"name": "ESS North", "serial_number": "ESS-0003"},
			  "parameters": {"names": ["State of charge"], "timestamps": [["2024-01-01T00:00:00"]], "values": [[55]]},
			  "excel_bytes_base64": "UEsDBBQ="
			}`))
		},
	}
	f := newFixture(t, stub, true)
	v := f.view(t, "energystoragepowerstationreportingparameters")
	require.NoError(t, v.Open(context.Background()))

	query := stub.lastQuery(t)
	assert.Equal(t, "3", query.Get("id"))
	assert.False(t, query.Has("periodtype"))

	snapshot := v.Snapshot()
	assert.True(t, snapshot.ResultsVisible)
	assert.Equal(t, "ESS North", snapshot.Result.Entity["name"])

	file, err := v.Export()
	require.NoError(t, err)
	assert.Equal(t, "energystoragepowerstationparameters.xlsx", file.Name)
}

func TestView_InvalidSession(t *testing.T) {
	stub := &stubBackend{report: func(w http.ResponseWriter, r *http.Request) {}}
	f := newFixture(t, stub, false)
	v := f.view(t, "meterenergy")

	err := v.Open(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)

	target, redirect := f.redirect.Pending()
	assert.True(t, redirect)
	assert.Equal(t, domain.LoginRedirectURL, target)

	assert.ErrorIs(t, v.Submit(context.Background()), domain.ErrSessionInvalid)
}

func TestView_PeriodNotifications(t *testing.T) {
	stub := &stubBackend{report: func(w http.ResponseWriter, r *http.Request) {}}
	f := newFixture(t, stub, true)
	v := f.view(t, "meterenergy")
	require.NoError(t, v.Open(context.Background()))

	err := v.SetBasePeriod(january())
	assert.ErrorIs(t, err, domain.ErrBasePeriodLocked)

	require.NoError(t, v.SetComparisonMode(domain.ComparisonFree))
	require.NoError(t, v.SetBasePeriod(january()))
	assert.True(t, v.Snapshot().BaseEditable)

	require.NoError(t, v.SetReportingPeriod(domain.PeriodRange{}))
	assert.True(t, v.Snapshot().Reporting.IsCleared())

	notifications := v.DrainNotifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "ERR_BASE_PERIOD_LOCKED", notifications[0].Key)
}

func TestView_Close(t *testing.T) {
	stub := &stubBackend{report: func(w http.ResponseWriter, r *http.Request) {}}
	f := newFixture(t, stub, true)
	v := f.view(t, "meterenergy")
	require.NoError(t, v.Open(context.Background()))

	v.Close()
	v.Close()
	assert.False(t, v.Expired())
	assert.ErrorIs(t, v.Submit(context.Background()), ErrClosed)
	assert.ErrorIs(t, v.Open(context.Background()), ErrClosed)
}
