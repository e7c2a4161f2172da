package models

import (
	"github.com/google/uuid"
)

// ReminderSetting describes when a task reminder fires.
// Date and Time hold an absolute reminder in the task timezone. When they are empty the
// reminder is relative to the occurrence start: UseDefault, then Overrides, then Before.
type ReminderSetting struct {
	Date       string `json:"date,omitempty" yaml:"date,omitempty"`
	Time       string `json:"time,omitempty" yaml:"time,omitempty"`
	Before     *int   `json:"before,omitempty" yaml:"before,omitempty" validate:"omitempty,min=0"`
	UseDefault bool   `json:"use_default,omitempty" yaml:"use_default,omitempty"`
	Overrides  []int  `json:"overrides,omitempty" yaml:"overrides,omitempty" validate:"omitempty,dive,min=0"`
}

// HasAbsolute reports whether the setting carries a concrete reminder date
func (r *ReminderSetting) HasAbsolute() bool {
	return r != nil && r.Date != ""
}

// HasRelative reports whether the setting can be projected from an occurrence start
func (r *ReminderSetting) HasRelative() bool {
	return r != nil && (r.UseDefault || len(r.Overrides) > 0 || r.Before != nil)
}

// Clone returns an independent copy of the setting
func (r *ReminderSetting) Clone() *ReminderSetting {
	if r == nil {
		return nil
	}
	return &ReminderSetting{
		Date:       r.Date,
		Time:       r.Time,
		Before:     clonePtr(r.Before),
		UseDefault: r.UseDefault,
		Overrides:  cloneInts(r.Overrides),
	}
}

// ReminderRecord pairs a task with an absolute reminder instant (Unix milliseconds).
// It is comparable and used as a deduplication key.
type ReminderRecord struct {
	TaskID  uuid.UUID `json:"task_id"`
	Instant int64     `json:"instant"`
}
