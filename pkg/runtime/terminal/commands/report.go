package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/ems-atlas/pkg/adapters"
	"github.com/de-tools/ems-atlas/pkg/models/api"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
	"github.com/de-tools/ems-atlas/pkg/services/export"
	"github.com/spf13/cobra"
)

type ReportCmd struct {
	deps       *Deps
	reportType string
	path       []int64
	entities   []int64
	start      string
	end        string
	baseStart  string
	baseEnd    string
	comparison string
	periodType string
	exportDir  string
	timeout    time.Duration
	location   *time.Location
}

func NewReportCmd(deps *Deps) *cobra.Command {
	rc := &ReportCmd{deps: deps, location: time.Local}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch a report and print its summary and detailed data",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.reportType, "report", "", "Report type (see `ems reports`)")
	cmd.Flags().Int64SliceVar(&rc.path, "path", nil, "Space path applied to every selection slot")
	cmd.Flags().Int64SliceVar(&rc.entities, "entity", nil, "Entity id, one per selection slot in order")
	cmd.Flags().StringVar(&rc.start, "start", "", "Reporting period start, 2006-01-02T15:04:05")
	cmd.Flags().StringVar(&rc.end, "end", "", "Reporting period end, 2006-01-02T15:04:05")
	cmd.Flags().StringVar(&rc.baseStart, "base-start", "", "Base period start (free comparison only)")
	cmd.Flags().StringVar(&rc.baseEnd, "base-end", "", "Base period end (free comparison only)")
	cmd.Flags().StringVar(&rc.comparison, "comparison", "", "none-comparison, year-over-year, month-on-month or free-comparison")
	cmd.Flags().StringVar(&rc.periodType, "period-type", "", "hourly, daily, monthly or yearly")
	cmd.Flags().StringVar(&rc.exportDir, "export-dir", "", "Write the spreadsheet export into this directory")
	cmd.Flags().DurationVar(&rc.timeout, "timeout", 2*time.Minute, "Give up after this long")

	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rc.timeout)
	defer cancel()

	v, err := rc.deps.Views.Open(ctx, rc.reportType)
	if err != nil {
		return rc.deps.describe(err)
	}
	defer rc.deps.printNotifications(cmd.ErrOrStderr(), v)

	snapshot := v.Snapshot()
	if len(rc.entities) != len(snapshot.Slots) {
		params := make([]string, len(snapshot.Slots))
		for i, s := range snapshot.Slots {
			params[i] = s.Param
		}
		return fmt.Errorf("%s needs %d --entity values (%s), got %d",
			rc.reportType, len(snapshot.Slots), strings.Join(params, ", "), len(rc.entities))
	}

	for i, id := range rc.entities {
		if len(rc.path) > 0 {
			if err := v.SetScope(ctx, i, rc.path); err != nil {
				return rc.deps.describe(err)
			}
		}
		if err := v.Select(i, id); err != nil {
			return rc.deps.describe(err)
		}
	}

	if err := rc.applyPeriod(v); err != nil {
		return rc.deps.describe(err)
	}

	if err := v.Submit(ctx); err != nil {
		return rc.deps.describe(err)
	}

	result := v.Snapshot().Result
	if result == nil {
		return fmt.Errorf("no report was returned for %s", rc.reportType)
	}
	if err := rc.deps.Reporter.Handle(result); err != nil {
		return err
	}

	if rc.exportDir == "" {
		return nil
	}
	file, err := v.Export()
	if err != nil {
		return rc.deps.describe(err)
	}
	path, err := export.WriteFile(rc.exportDir, file)
	if err != nil {
		return err
	}
	return rc.deps.Reporter.Saved(path, len(file.Data))
}

// applyPeriod sets the comparison mode before the ranges so a derived base period
// follows the reporting period, and the period type last.
func (rc *ReportCmd) applyPeriod(v ReportView) error {
	if rc.comparison != "" {
		mode, err := domain.ParseComparisonMode(rc.comparison)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRange, err)
		}
		if err := v.SetComparisonMode(mode); err != nil {
			return err
		}
	}
	if rc.start != "" || rc.end != "" {
		r, err := adapters.MapPeriodApiToDomain(api.PeriodRange{Start: rc.start, End: rc.end}, rc.location)
		if err != nil {
			return err
		}
		if err := v.SetReportingPeriod(r); err != nil {
			return err
		}
	}
	if rc.baseStart != "" || rc.baseEnd != "" {
		r, err := adapters.MapPeriodApiToDomain(api.PeriodRange{Start: rc.baseStart, End: rc.baseEnd}, rc.location)
		if err != nil {
			return err
		}
		if err := v.SetBasePeriod(r); err != nil {
			return err
		}
	}
	if rc.periodType != "" {
		g, err := domain.ParseGranularity(rc.periodType)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRange, err)
		}
		if err := v.SetGranularity(g); err != nil {
			return err
		}
	}
	return nil
}
