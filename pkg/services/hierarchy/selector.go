package hierarchy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/de-tools/ems-atlas/pkg/adapters"
	"github.com/de-tools/ems-atlas/pkg/models/api"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/services/filter"
	"github.com/de-tools/ems-atlas/pkg/store/client"
	"github.com/rs/zerolog"
)

// Selector loads the space tree, tracks the chosen scope and feeds the entities of
// that scope into a filter.
type Selector struct {
	backend client.BackendClient
	kind    domain.EntityKind
	filter  *filter.Filter

	mu         sync.RWMutex
	tree       []domain.SpaceNode
	path       []int64
	label      string
	generation uint64
}

func NewSelector(backend client.BackendClient, kind domain.EntityKind, f *filter.Filter) *Selector {
	return &Selector{
		backend: backend,
		kind:    kind,
		filter:  f,
	}
}

// LoadTree fetches the hierarchy, selects its root and loads the root's entities.
// A failure leaves the previous tree and scope in place.
func (s *Selector) LoadTree(ctx context.Context, creds domain.Credentials) error {
	raw, err := s.backend.GetSpaceTree(ctx, creds)
	if err != nil {
		return fmt.Errorf("failed to load space tree: %w", err)
	}
	root := adapters.MapStoreSpaceToDomain(raw)

	s.mu.Lock()
	s.tree = []domain.SpaceNode{root}
	s.path = []int64{root.ID}
	s.label = root.Name
	s.mu.Unlock()

	return s.LoadEntities(ctx, creds, root.ID)
}

// LoadEntities replaces the filter's list with the entities of spaceID. Only the most
// recently issued load is applied; older responses are dropped.
func (s *Selector) LoadEntities(ctx context.Context, creds domain.Credentials, spaceID int64) error {
	logger := zerolog.Ctx(ctx)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	raw, err := s.backend.ListEntities(ctx, creds, spaceID, s.kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		logger.Debug().Int64("space_id", spaceID).Uint64("generation", gen).Msg("dropping stale entity list")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s of space %d: %w", s.kind, spaceID, err)
	}

	s.filter.Replace(adapters.MapStoreEntitiesToDomain(raw))
	logger.Debug().Int64("space_id", spaceID).Int("count", len(raw)).Msg("entities loaded")
	return nil
}

// OnScopeChange narrows the scope to path (root first) and loads the entities of its last node.
func (s *Selector) OnScopeChange(ctx context.Context, creds domain.Credentials, path []int64) error {
	s.mu.Lock()
	if len(s.tree) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: space tree is not loaded", domain.ErrInvalidScope)
	}
	nodes, ok := s.tree[0].Find(path)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrInvalidScope, path)
	}

	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	s.path = append([]int64(nil), path...)
	s.label = strings.Join(names, "/")
	s.mu.Unlock()

	return s.LoadEntities(ctx, creds, path[len(path)-1])
}

func (s *Selector) Options() []api.CascaderOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	options := make([]api.CascaderOption, 0, len(s.tree))
	for _, n := range s.tree {
		options = append(options, adapters.MapDomainSpaceToCascader(n))
	}
	return options
}

func (s *Selector) Tree() []domain.SpaceNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SpaceNode(nil), s.tree...)
}

func (s *Selector) Label() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.label
}

func (s *Selector) Path() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.path...)
}

func (s *Selector) Kind() domain.EntityKind {
	return s.kind
}
