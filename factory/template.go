package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/schedule"
)

// TemplateJSON is the JSON representation of a recurring shift template.
type TemplateJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	RRule        string `json:"rrule"`
	StartDate    string `json:"start_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	EndsNextDay  bool   `json:"ends_next_day,omitempty"`
	BreakMinutes int    `json:"break_minutes,omitempty"`
	SkipHolidays bool   `json:"skip_holidays,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ParseTemplate parses and validates a template JSON string.
func ParseTemplate(jsonStr string) (schedule.Template, error) {
	var tj TemplateJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return schedule.Template{}, fmt.Errorf("failed to parse template JSON: %w", err)
	}
	return TemplateFromJSON(tj)
}

func TemplateFromJSON(tj TemplateJSON) (schedule.Template, error) {
	date, err := generic.ParseDate(tj.StartDate)
	if err != nil {
		return schedule.Template{}, generic.Invalid(generic.ReasonInvalidSchedule, "start_date", "%v", err)
	}
	start, err := generic.ParseClock(tj.StartTime)
	if err != nil {
		return schedule.Template{}, generic.Invalid(generic.ReasonInvalidClock, "start_time", "%v", err)
	}
	end, err := generic.ParseClock(tj.EndTime)
	if err != nil {
		return schedule.Template{}, generic.Invalid(generic.ReasonInvalidClock, "end_time", "%v", err)
	}

	t := schedule.Template{
		ID:           tj.ID,
		Name:         tj.Name,
		RRule:        tj.RRule,
		StartDate:    date,
		Start:        start,
		End:          end,
		EndsNextDay:  tj.EndsNextDay,
		BreakMinutes: tj.BreakMinutes,
		SkipHolidays: tj.SkipHolidays,
		Description:  tj.Description,
	}
	if err := t.Validate(); err != nil {
		return schedule.Template{}, err
	}
	return t, nil
}

func TemplateToJSON(t schedule.Template) TemplateJSON {
	return TemplateJSON{
		ID:           t.ID,
		Name:         t.Name,
		RRule:        t.RRule,
		StartDate:    t.StartDate.String(),
		StartTime:    t.Start.String(),
		EndTime:      t.End.String(),
		EndsNextDay:  t.EndsNextDay,
		BreakMinutes: t.BreakMinutes,
		SkipHolidays: t.SkipHolidays,
		Description:  t.Description,
	}
}
