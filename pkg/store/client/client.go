package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/models/store"
)

// BackendClient talks to the reporting backend's REST API.
type BackendClient interface {
	GetSpaceTree(ctx context.Context, creds domain.Credentials) (store.SpaceNode, error)
	ListEntities(ctx context.Context, creds domain.Credentials, spaceID int64, kind domain.EntityKind) ([]store.Entity, error)
	// GetReport returns the raw 2xx body; decoding is up to the report's decomposer.
	GetReport(ctx context.Context, creds domain.Credentials, reportType string, params url.Values) (json.RawMessage, error)
	Login(ctx context.Context, account, password string) (store.LoginResponse, error)
}
