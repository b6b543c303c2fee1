package api

type CascaderOption struct {
	Value    int64            `json:"value"`
	Label    string           `json:"label"`
	Children []CascaderOption `json:"children,omitempty"`
}

type Entity struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// PeriodRange bounds use the 2006-01-02T15:04:05 wall-clock layout. Empty bounds mean
// the range is cleared.
type PeriodRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type PeriodUpdate struct {
	Reporting   *PeriodRange `json:"reporting,omitempty"`
	Base        *PeriodRange `json:"base,omitempty"`
	Comparison  string       `json:"comparison,omitempty"`
	Granularity string       `json:"period_type,omitempty"`
}

type ScopeUpdate struct {
	Path []int64 `json:"path"`
}

type SelectionUpdate struct {
	ID int64 `json:"id"`
}

type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Slot struct {
	Param      string           `json:"param"`
	Spaces     []CascaderOption `json:"spaces"`
	Path       []int64          `json:"path"`
	ScopeLabel string           `json:"scope_label"`
	Keyword    string           `json:"keyword"`
	Entities   []Entity         `json:"entities"`
	Selected   *int64           `json:"selected"`
}

type ViewState struct {
	ReportType     string         `json:"report_type"`
	Slots          []Slot         `json:"slots"`
	Reporting      PeriodRange    `json:"reporting_period"`
	Base           PeriodRange    `json:"base_period"`
	BaseEditable   bool           `json:"base_period_editable"`
	Comparison     string         `json:"comparison"`
	PeriodType     string         `json:"period_type"`
	SubmitEnabled  bool           `json:"submit_enabled"`
	Busy           bool           `json:"busy"`
	ResultsVisible bool           `json:"results_visible"`
	ExportVisible  bool           `json:"export_visible"`
	Notifications  []Notification `json:"notifications"`
	Result         *Report        `json:"result,omitempty"`
}

type Series struct {
	Key        string              `json:"key"`
	Name       string              `json:"name"`
	Unit       string              `json:"unit"`
	Timestamps []string            `json:"timestamps"`
	Values     []*float64          `json:"values"`
	Subtotal   *float64            `json:"subtotal,omitempty"`
	Rates      []string            `json:"rates,omitempty"`
	Statistics map[string]*float64 `json:"statistics,omitempty"`
}

type SummaryCard struct {
	Name                string `json:"name"`
	Unit                string `json:"unit"`
	Subtotal            string `json:"subtotal"`
	IncrementRate       string `json:"increment_rate,omitempty"`
	SubtotalPerUnitArea string `json:"subtotal_per_unit_area,omitempty"`
}

type ShareSlice struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	Color string   `json:"color"`
}

type Column struct {
	DataField string `json:"dataField"`
	Text      string `json:"text"`
	Sort      bool   `json:"sort"`
}

type Report struct {
	ReportType      string                  `json:"report_type"`
	Entity          map[string]any          `json:"entity,omitempty"`
	Cards           []SummaryCard           `json:"cards"`
	BaseSeries      []Series                `json:"base_period"`
	ReportingSeries []Series                `json:"reporting_period"`
	Parameters      []Series                `json:"parameters"`
	Shares          map[string][]ShareSlice `json:"shares,omitempty"`
	Columns         []Column                `json:"columns"`
	Rows            []map[string]any        `json:"rows"`
}

type ReportDefinition struct {
	Type       string   `json:"type"`
	EntityKind string   `json:"entity_kind"`
	Params     []string `json:"entity_params"`
	PeriodType bool     `json:"period_type"`
	BasePeriod bool     `json:"base_period"`
	FileName   string   `json:"file_name"`
}

type Redirect struct {
	RedirectURL string `json:"redirect_url"`
	Description string `json:"description"`
}

type Error struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
