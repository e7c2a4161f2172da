package reminder

import (
	"slices"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/samber/mo"
)

// DefaultLeadMinutes is how long before an occurrence a default reminder fires
const DefaultLeadMinutes = 30

// Project derives the reminder of a task occurrence starting at start.
//
// A default reminder fires DefaultLeadMinutes before start. With override lead times the
// largest one wins, so the earliest reminder fires. Before is used when neither is set.
// The returned setting carries the reminder date and time in the task timezone. A setting
// with only an absolute date is returned unchanged. A task without any reminder
// configuration, or with a timezone that does not load, yields None.
func Project(task *models.Task, start time.Time) mo.Option[models.ReminderSetting] {
	if task == nil || task.ReminderSetting == nil {
		return mo.None[models.ReminderSetting]()
	}
	setting := task.ReminderSetting

	lead, ok := leadMinutes(setting)
	if !ok {
		if setting.HasAbsolute() {
			return mo.Some(*setting.Clone())
		}
		return mo.None[models.ReminderSetting]()
	}

	loc, err := recurrence.LoadZone(task.Timezone)
	if err != nil {
		return mo.None[models.ReminderSetting]()
	}
	at := start.Add(-time.Duration(lead) * time.Minute).In(loc)

	projected := setting.Clone()
	projected.Date = recurrence.FormatDate(at)
	projected.Time = recurrence.FormatTime(at)
	return mo.Some(*projected)
}

func leadMinutes(setting *models.ReminderSetting) (int, bool) {
	switch {
	case setting.UseDefault:
		return DefaultLeadMinutes, true
	case len(setting.Overrides) > 0:
		return slices.Max(setting.Overrides), true
	case setting.Before != nil:
		return *setting.Before, true
	default:
		return 0, false
	}
}

// Instant resolves the absolute reminder instant of a task or task occurrence.
// Relative settings are projected from the task start, taken from StartTime or
// from the due date and time.
func Instant(task *models.Task) (time.Time, bool) {
	if task == nil || task.ReminderSetting == nil {
		return time.Time{}, false
	}
	loc, err := recurrence.LoadZone(task.Timezone)
	if err != nil {
		return time.Time{}, false
	}

	setting := task.ReminderSetting
	if setting.HasRelative() {
		start, ok := taskStart(task, loc)
		if !ok {
			return time.Time{}, false
		}
		projected, ok := Project(task, start).Get()
		if !ok {
			return time.Time{}, false
		}
		setting = &projected
	}
	if !setting.HasAbsolute() {
		return time.Time{}, false
	}

	at, err := recurrence.StartInstant(setting.Date, setting.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

func taskStart(task *models.Task, loc *time.Location) (time.Time, bool) {
	if task.StartTime != nil {
		return task.StartTime.In(loc), true
	}
	if task.DueDate == "" {
		return time.Time{}, false
	}
	start, err := recurrence.StartInstant(task.DueDate, task.DueTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

// Record builds the deduplication record of a task reminder
func Record(task *models.Task, at time.Time) models.ReminderRecord {
	return models.ReminderRecord{TaskID: task.ID, Instant: at.UnixMilli()}
}
