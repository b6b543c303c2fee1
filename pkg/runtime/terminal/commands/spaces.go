package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/de-tools/ems-atlas/pkg/adapters"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/spf13/cobra"
)

func NewSpacesCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "spaces",
		Short: "Print the space hierarchy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			s, err := deps.Sessions.Check(ctx)
			if err != nil {
				return deps.describe(err)
			}
			root, err := deps.Backend.GetSpaceTree(ctx, s.Credentials())
			if err != nil {
				return deps.describe(err)
			}
			return printSpace(cmd.OutOrStdout(), adapters.MapStoreSpaceToDomain(root), 0)
		},
	}
}

func printSpace(w io.Writer, node domain.SpaceNode, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%d  %s\n", strings.Repeat("  ", depth), node.ID, node.Name); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := printSpace(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

type EntitiesCmd struct {
	deps       *Deps
	reportType string
	slot       int
	path       []int64
	keyword    string
}

func NewEntitiesCmd(deps *Deps) *cobra.Command {
	ec := &EntitiesCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List the entities a report can be run for",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.reportType, "report", "", "Report type (see `ems reports`)")
	cmd.Flags().IntVar(&ec.slot, "slot", 0, "Selection slot for reports comparing several entities")
	cmd.Flags().Int64SliceVar(&ec.path, "path", nil, "Space path from the root, e.g. 1,3,7")
	cmd.Flags().StringVar(&ec.keyword, "search", "", "Only list entities whose name contains this text")

	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func (ec *EntitiesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	v, err := ec.deps.Views.Open(ctx, ec.reportType)
	if err != nil {
		return ec.deps.describe(err)
	}
	defer ec.deps.printNotifications(cmd.ErrOrStderr(), v)

	if len(ec.path) > 0 {
		if err := v.SetScope(ctx, ec.slot, ec.path); err != nil {
			return ec.deps.describe(err)
		}
	}

	entities, err := v.Search(ec.slot, ec.keyword)
	if err != nil {
		return ec.deps.describe(err)
	}

	out := cmd.OutOrStdout()
	for _, e := range entities {
		if _, err := fmt.Fprintf(out, "%d  %s\n", e.ID, e.Name); err != nil {
			return err
		}
	}
	if len(entities) > 0 || ec.keyword == "" {
		return nil
	}

	if suggestion, ok, err := v.Suggest(ec.slot, ec.keyword); err == nil && ok {
		_, err = fmt.Fprintf(out, "%s %q (%d)?\n", ec.deps.Translator.T("Did you mean"), suggestion.Name, suggestion.ID)
		return err
	}
	return nil
}
