package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/de-tools/ems-atlas/pkg/i18n"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/dustin/go-humanize"
)

type TableConfig struct {
	MinColumnWidth int
	MaxColumnWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinColumnWidth: 8,
		MaxColumnWidth: 32,
	}
}

// Reporter prints fetched reports to the console as summary cards followed by the
// detailed data table.
type Reporter struct {
	writer     io.Writer
	config     TableConfig
	translator i18n.Translator
}

func NewReporter(writer io.Writer, translator i18n.Translator) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer:     writer,
		config:     DefaultTableConfig(),
		translator: translator,
	}
}

type reportData struct {
	Title  string
	Cards  []domain.SummaryCard
	Table  domain.Table
	Shares map[string][]domain.ShareSlice
}

func (c *Reporter) Handle(vm *domain.ReportViewModel) error {
	if vm == nil {
		return fmt.Errorf("no report to print")
	}
	widths := c.widths(vm.Table)

	funcMap := template.FuncMap{
		"t": c.translate,
		"formatRow": func(row domain.Row) string {
			cells := make([]string, len(vm.Table.Columns))
			for i, col := range vm.Table.Columns {
				cells[i] = c.pad(formatCell(row.Cells[col.Field]), widths[i], col.Numeric)
			}
			return "| " + strings.Join(cells, " | ") + " |"
		},
		"header": func() string {
			cells := make([]string, len(vm.Table.Columns))
			for i, col := range vm.Table.Columns {
				cells[i] = c.pad(col.Text, widths[i], false)
			}
			return "| " + strings.Join(cells, " | ") + " |"
		},
		"separator": func() string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
		"share": func(v *float64) string {
			if v == nil {
				return "-"
			}
			return humanize.FormatFloat("#,###.##", *v)
		},
		"count": func(n int) string {
			return humanize.Comma(int64(n))
		},
	}

	tmpl := `
{{.Title}}
{{range .Cards}}
{{.Name}}{{if .Unit}} ({{.Unit}}){{end}}: {{.Subtotal}}{{if .IncrementRate}}  {{t "Increment Rate"}} {{.IncrementRate}}{{end}}{{if .SubtotalPerUnitArea}}  {{t "Per Unit Area"}} {{.SubtotalPerUnitArea}}{{end}}{{end}}
{{range $kind, $slices := .Shares}}
=== {{t $kind}} ===
{{range $slices}}- {{.Name}}: {{share .Value}}
{{end}}{{end}}
{{if .Table.Columns}}{{separator}}
{{header}}
{{separator}}
{{range .Table.Rows}}{{formatRow .}}
{{end}}{{separator}}
{{count (len .Table.Rows)}} {{t "rows"}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, reportData{
		Title:  c.translate(vm.ReportType),
		Cards:  vm.Cards,
		Table:  vm.Table,
		Shares: vm.Shares,
	})
}

// Saved prints where an export was written.
func (c *Reporter) Saved(path string, size int) error {
	_, err := fmt.Fprintf(c.writer, "%s %s (%s)\n", c.translate("Exported to"), path, humanize.Bytes(uint64(size)))
	return err
}

func (c *Reporter) translate(key string) string {
	if c.translator == nil {
		return key
	}
	return c.translator.T(key)
}

func (c *Reporter) widths(table domain.Table) []int {
	widths := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		w := max(c.config.MinColumnWidth, utf8.RuneCountInString(col.Text))
		for _, row := range table.Rows {
			w = max(w, utf8.RuneCountInString(formatCell(row.Cells[col.Field])))
		}
		widths[i] = min(w, c.config.MaxColumnWidth)
	}
	return widths
}

func (c *Reporter) pad(s string, width int, right bool) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-1]) + "…"
	}
	if right {
		return strings.Repeat(" ", width-n) + s
	}
	return s + strings.Repeat(" ", width-n)
}

// formatCell groups thousands on numbers; the table keeps two decimals.
func formatCell(cell domain.Cell) string {
	if cell.Number != nil {
		return humanize.FormatFloat("#,###.##", *cell.Number)
	}
	return cell.Format()
}
