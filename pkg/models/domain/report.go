package domain

import "fmt"

// SpreadsheetMIMEType tags every export payload.
const SpreadsheetMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportViewModel is everything the presentation widgets need from one fetch.
// It is replaced wholesale on every successful fetch.
type ReportViewModel struct {
	ReportType      string
	Entity          map[string]any
	Cards           []SummaryCard
	BaseSeries      []Series
	ReportingSeries []Series
	Parameters      []Series
	Shares          map[string][]ShareSlice
	Table           Table
	Export          *ExportPayload
}

// Series is one named, unit-tagged sequence of timestamped values.
type Series struct {
	Key        string // a0, a1, ...
	Name       string
	Unit       string
	Timestamps []string
	Values     []*float64
	Subtotal   *float64
	Rates      []string
	Statistics map[string]*float64
}

// Label is the chart option label, e.g. "Electricity (kWh)".
func (s Series) Label() string {
	if s.Unit == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Unit)
}

// SummaryCard holds preformatted values for one summary card.
type SummaryCard struct {
	Name                string
	Unit                string
	Subtotal            string
	IncrementRate       string
	SubtotalPerUnitArea string
}

// ShareSlice is one slice of a share pie.
type ShareSlice struct {
	ID    int
	Name  string
	Value *float64
	Color string
}

type Table struct {
	Columns []Column
	Rows    []Row
}

type Column struct {
	Field string
	Text  string
	// Numeric columns render with two decimals, others as text.
	Numeric bool
}

type Row struct {
	ID    int
	Cells map[string]Cell
}

// Cell is a table cell. Both fields nil means a null cell.
type Cell struct {
	Text   *string
	Number *float64
}

func TextCell(s string) Cell {
	return Cell{Text: &s}
}

func NumberCell(v *float64) Cell {
	return Cell{Number: v}
}

func (c Cell) IsNull() bool {
	return c.Text == nil && c.Number == nil
}

// Format renders the cell the way the detailed data table does: numbers with two
// decimals, text as is, null as the empty string.
func (c Cell) Format() string {
	switch {
	case c.Number != nil:
		return fmt.Sprintf("%.2f", *c.Number)
	case c.Text != nil:
		return *c.Text
	}
	return ""
}

// ExportPayload is the base64 spreadsheet returned by the last successful fetch.
type ExportPayload struct {
	Base64   string
	MIMEType string
	FileName string
}
