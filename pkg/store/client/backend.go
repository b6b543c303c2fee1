package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/ems-atlas/pkg/metrics"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/models/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
	// HTTPClient defaults to a client without its own timeout; Timeout is applied per request.
	HTTPClient *http.Client
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          60 * time.Second,
		BreakerFailures:  5,
		BreakerOpenDelay: 30 * time.Second,
	}
}

type httpBackend struct {
	baseURL *url.URL
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewBackendClient(cfg Config) (BackendClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", cfg.BaseURL)
	}

	defaults := DefaultConfig(cfg.BaseURL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerOpenDelay <= 0 {
		cfg.BreakerOpenDelay = defaults.BreakerOpenDelay
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ems-backend",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &httpBackend{
		baseURL: base,
		timeout: cfg.Timeout,
		client:  cfg.HTTPClient,
		breaker: breaker,
	}, nil
}

func (b *httpBackend) GetSpaceTree(ctx context.Context, creds domain.Credentials) (store.SpaceNode, error) {
	var tree store.SpaceNode
	body, err := b.do(ctx, "spaces/tree", http.MethodGet, "/spaces/tree", nil, &creds, nil)
	if err != nil {
		return tree, err
	}
	if err := json.Unmarshal(body, &tree); err != nil {
		return tree, fmt.Errorf("%w: space tree: %v", domain.ErrMalformedResponse, err)
	}
	return tree, nil
}

func (b *httpBackend) ListEntities(
	ctx context.Context,
	creds domain.Credentials,
	spaceID int64,
	kind domain.EntityKind,
) ([]store.Entity, error) {
	path := fmt.Sprintf("/spaces/%d/%s", spaceID, kind)
	body, err := b.do(ctx, "spaces/"+string(kind), http.MethodGet, path, nil, &creds, nil)
	if err != nil {
		return nil, err
	}

	var entities []store.Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, fmt.Errorf("%w: %s list: %v", domain.ErrMalformedResponse, kind, err)
	}
	return entities, nil
}

func (b *httpBackend) GetReport(
	ctx context.Context,
	creds domain.Credentials,
	reportType string,
	params url.Values,
) (json.RawMessage, error) {
	body, err := b.do(ctx, "reports/"+reportType, http.MethodGet, "/reports/"+reportType, params, &creds, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s report is not valid JSON", domain.ErrMalformedResponse, reportType)
	}
	return body, nil
}

func (b *httpBackend) Login(ctx context.Context, account, password string) (store.LoginResponse, error) {
	var resp store.LoginResponse

	payload, err := json.Marshal(store.LoginEnvelope{Data: store.LoginRequest{Account: account, Password: password}})
	if err != nil {
		return resp, fmt.Errorf("failed to encode login request: %w", err)
	}

	body, err := b.do(ctx, "users/login", http.MethodPut, "/users/login", nil, nil, payload)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("%w: login: %v", domain.ErrMalformedResponse, err)
	}
	return resp, nil
}

// do sends one request through the breaker and returns the 2xx body. Non-2xx answers
// come back as *domain.APIError; only transport failures and 5xx count against the breaker.
func (b *httpBackend) do(
	ctx context.Context,
	endpoint, method, path string,
	params url.Values,
	creds *domain.Credentials,
	payload []byte,
) ([]byte, error) {
	requestID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	target := b.baseURL.JoinPath(path)
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	start := time.Now()
	result, err := b.breaker.Execute(func() (interface{}, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-type", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if creds != nil {
			req.Header.Set("User-UUID", creds.UserUUID)
			req.Header.Set("Token", creds.Token)
		}

		resp, err := b.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func(Body io.ReadCloser) {
			if err := Body.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close response body")
			}
		}(resp.Body)

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, apiError(resp.StatusCode, body)
		}
		return &response{status: resp.StatusCode, body: body}, nil
	})
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		err = classify(ctx, err)
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("backend request failed")
		return nil, err
	}

	resp := result.(*response)
	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		err := apiError(resp.status, resp.body)
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, metrics.OutcomeFailure).Inc()
		logger.Warn().Err(err).Msg("backend rejected request")
		return nil, err
	}

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, metrics.OutcomeSuccess).Inc()
	logger.Debug().Int("status", resp.status).Dur("elapsed", time.Since(start)).Msg("backend request done")
	return resp.body, nil
}

type response struct {
	status int
	body   []byte
}

func apiError(status int, body []byte) *domain.APIError {
	e := &domain.APIError{StatusCode: status}
	var envelope store.ErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		e.Title = envelope.Title
		e.Description = envelope.Description
	}
	return e
}

func classify(ctx context.Context, err error) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrRequestTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}

func outcome(err error) string {
	if errors.Is(err, domain.ErrRequestTimeout) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeFailure
}
