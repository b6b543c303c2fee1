package domain

const (
	NotificationError = "error"
	NotificationInfo  = "info"
)

// Notification is a localized message for the user, shown in the order raised.
type Notification struct {
	Level   string
	Key     string
	Message string
}

// SlotSnapshot is the state of one space selector and entity filter pair.
type SlotSnapshot struct {
	Param      string
	Tree       []SpaceNode
	Path       []int64
	ScopeLabel string
	Keyword    string
	Entities   []Entity
	Selected   *Entity
}

// ViewSnapshot is a consistent copy of everything a report view renders.
type ViewSnapshot struct {
	ReportType     string
	Slots          []SlotSnapshot
	Reporting      PeriodRange
	Base           PeriodRange
	BaseEditable   bool
	Comparison     ComparisonMode
	Granularity    Granularity
	SubmitEnabled  bool
	Busy           bool
	ResultsVisible bool
	ExportVisible  bool
	Notifications  []Notification
	Result         *ReportViewModel
}
