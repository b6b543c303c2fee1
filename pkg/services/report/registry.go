package report

import (
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/ems-atlas/pkg/models/domain"
)

// Definition describes one report type: how to ask for it and how to read the answer.
type Definition struct {
	Type       string
	EntityKind domain.EntityKind
	// Params names the query parameter of each entity selection, in order.
	Params     []string
	PeriodType bool
	BasePeriod bool
	FileName   string
	// AutoSubmit submits as soon as the first entity list selects something.
	AutoSubmit bool
	Decomposer Decomposer
}

// Registry manages report definitions
type Registry interface {
	// Register adds a new report definition
	Register(def Definition) error
	// Get returns the definition of reportType
	Get(reportType string) (Definition, error)
	// List returns every registered definition ordered by type
	List() []Definition
}

type registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
}

// NewRegistry creates an empty report registry
func NewRegistry() Registry {
	return &registry{
		definitions: make(map[string]Definition),
	}
}

func (r *registry) Register(def Definition) error {
	if def.Type == "" {
		return fmt.Errorf("report type cannot be empty")
	}
	if def.Decomposer == nil {
		return fmt.Errorf("report %q has no decomposer", def.Type)
	}
	if len(def.Params) == 0 {
		return fmt.Errorf("report %q has no entity parameter", def.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("report %q is already registered", def.Type)
	}

	r.definitions[def.Type] = def
	return nil
}

func (r *registry) Get(reportType string) (Definition, error) {
	r.mu.RLock()
	def, exists := r.definitions[reportType]
	r.mu.RUnlock()

	if !exists {
		return Definition{}, fmt.Errorf("%w: %q", domain.ErrUnknownReport, reportType)
	}
	return def, nil
}

func (r *registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Type < defs[j].Type })
	return defs
}

// Builtins lists the report types shipped with the viewer.
func Builtins() []Definition {
	return []Definition{
		{
			Type:       "meterenergy",
			EntityKind: domain.EntityKindMeters,
			Params:     []string{"meterid"},
			PeriodType: true,
			BasePeriod: true,
			FileName:   "meterenergy.xlsx",
			Decomposer: &EnergyDecomposer{EntityKey: "meter"},
		},
		{
			Type:       "storecarbon",
			EntityKind: domain.EntityKindStores,
			Params:     []string{"storeid"},
			PeriodType: true,
			BasePeriod: true,
			FileName:   "storecarbon.xlsx",
			Decomposer: &EnergyDecomposer{EntityKey: "store"},
		},
		{
			Type:       "tenantstatistics",
			EntityKind: domain.EntityKindTenants,
			Params:     []string{"tenantid"},
			PeriodType: true,
			BasePeriod: true,
			FileName:   "tenantstatistics.xlsx",
			Decomposer: &EnergyDecomposer{EntityKey: "tenant"},
		},
		{
			Type:       "metercomparison",
			EntityKind: domain.EntityKindMeters,
			Params:     []string{"meterid1", "meterid2"},
			PeriodType: true,
			FileName:   "metercomparison.xlsx",
			Decomposer: &ComparisonDecomposer{},
		},
		{
			Type:       "energystoragepowerstationreportingparameters",
			EntityKind: domain.EntityKindEnergyStoragePowerStations,
			Params:     []string{"id"},
			FileName:   "energystoragepowerstationparameters.xlsx",
			AutoSubmit: true,
			Decomposer: &ParametersDecomposer{EntityKey: "energy_storage_power_station"},
		},
	}
}

// NewDefaultRegistry returns a registry holding the built-in reports.
func NewDefaultRegistry() (Registry, error) {
	r := NewRegistry()
	for _, def := range Builtins() {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
