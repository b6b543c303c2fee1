package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewReportsCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the available report types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TYPE\tNAME\tENTITY\tPARAMS\tEXPORT")
			for _, d := range deps.Views.Definitions() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					d.Type, deps.Translator.T(d.Type), d.EntityKind, strings.Join(d.Params, ","), d.FileName)
			}
			return w.Flush()
		},
	}
}
