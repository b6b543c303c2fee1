package adapters

import (
	"fmt"
	"time"

	"github.com/de-tools/ems-atlas/pkg/models/api"
	"github.com/de-tools/ems-atlas/pkg/models/domain"
)

func MapViewDomainToApi(s domain.ViewSnapshot) api.ViewState {
	state := api.ViewState{
		ReportType:     s.ReportType,
		Slots:          make([]api.Slot, 0, len(s.Slots)),
		Reporting:      MapPeriodDomainToApi(s.Reporting),
		Base:           MapPeriodDomainToApi(s.Base),
		BaseEditable:   s.BaseEditable,
		Comparison:     string(s.Comparison),
		PeriodType:     s.Granularity.String(),
		SubmitEnabled:  s.SubmitEnabled,
		Busy:           s.Busy,
		ResultsVisible: s.ResultsVisible,
		ExportVisible:  s.ExportVisible,
		Notifications:  make([]api.Notification, 0, len(s.Notifications)),
		Result:         MapReportDomainToApi(s.Result),
	}

	for _, slot := range s.Slots {
		out := api.Slot{
			Param:      slot.Param,
			Spaces:     make([]api.CascaderOption, 0, len(slot.Tree)),
			Path:       slot.Path,
			ScopeLabel: slot.ScopeLabel,
			Keyword:    slot.Keyword,
			Entities:   MapDomainEntitiesToApi(slot.Entities),
		}
		for _, node := range slot.Tree {
			out.Spaces = append(out.Spaces, MapDomainSpaceToCascader(node))
		}
		if slot.Selected != nil {
			id := slot.Selected.ID
			out.Selected = &id
		}
		state.Slots = append(state.Slots, out)
	}

	for _, n := range s.Notifications {
		state.Notifications = append(state.Notifications, api.Notification{Level: n.Level, Message: n.Message})
	}
	return state
}

func MapPeriodDomainToApi(r domain.PeriodRange) api.PeriodRange {
	if r.IsCleared() {
		return api.PeriodRange{}
	}
	return api.PeriodRange{
		Start: r.Start.Format(domain.WallClockLayout),
		End:   r.End.Format(domain.WallClockLayout),
	}
}

// MapPeriodApiToDomain reads wall-clock bounds in loc. Two empty bounds give the cleared range.
func MapPeriodApiToDomain(r api.PeriodRange, loc *time.Location) (domain.PeriodRange, error) {
	if r.Start == "" && r.End == "" {
		return domain.PeriodRange{}, nil
	}

	start, err := time.ParseInLocation(domain.WallClockLayout, r.Start, loc)
	if err != nil {
		return domain.PeriodRange{}, fmt.Errorf("%w: start %q: %v", domain.ErrInvalidRange, r.Start, err)
	}
	end, err := time.ParseInLocation(domain.WallClockLayout, r.End, loc)
	if err != nil {
		return domain.PeriodRange{}, fmt.Errorf("%w: end %q: %v", domain.ErrInvalidRange, r.End, err)
	}
	return domain.NewPeriodRange(start, end)
}
