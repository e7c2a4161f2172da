package models

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a task template or, after expansion, one of its occurrences
type Task struct {
	ID              uuid.UUID        `json:"id" yaml:"id"`
	Owner           string           `json:"owner" yaml:"owner" validate:"required"`
	Name            string           `json:"name" yaml:"name" validate:"required,max=500"`
	Assignees       []string         `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Labels          []string         `json:"labels,omitempty" yaml:"labels,omitempty"`
	DueDate         string           `json:"due_date,omitempty" yaml:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueTime         string           `json:"due_time,omitempty" yaml:"due_time,omitempty" validate:"omitempty,datetime=15:04"`
	Duration        int              `json:"duration,omitempty" yaml:"duration,omitempty" validate:"min=0"`
	Timezone        string           `json:"timezone" yaml:"timezone" validate:"required,timezone"`
	RecurrenceRule  string           `json:"recurrence_rule,omitempty" yaml:"recurrence_rule,omitempty"`
	CompletedSlots  string           `json:"completed_slots,omitempty" yaml:"completed_slots,omitempty"`
	ReminderSetting *ReminderSetting `json:"reminder_setting,omitempty" yaml:"reminder_setting,omitempty"`
	StartTime       *time.Time       `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime         *time.Time       `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Location        string           `json:"location,omitempty" yaml:"location,omitempty"`
	CreatedAt       time.Time        `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at" yaml:"updated_at,omitempty"`
}

func (t *Task) template() {}

// TemplateID implements Template
func (t *Task) TemplateID() uuid.UUID { return t.ID }

// Rule implements Template
func (t *Task) Rule() string { return t.RecurrenceRule }

// Zone implements Template
func (t *Task) Zone() string { return t.Timezone }

// Exclusions implements Template
func (t *Task) Exclusions() string { return t.CompletedSlots }

// BaseDateTime implements Template
func (t *Task) BaseDateTime() (string, string) { return t.DueDate, t.DueTime }

// CloneTemplate implements Template
func (t *Task) CloneTemplate() (Template, error) {
	c, err := t.Clone()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Clone builds a new task field by field so that no slice or pointer is shared with t
func (t *Task) Clone() (*Task, error) {
	if t == nil {
		return nil, ErrCloneFailed
	}
	return &Task{
		ID:              t.ID,
		Owner:           t.Owner,
		Name:            t.Name,
		Assignees:       cloneStrings(t.Assignees),
		Labels:          cloneStrings(t.Labels),
		DueDate:         t.DueDate,
		DueTime:         t.DueTime,
		Duration:        t.Duration,
		Timezone:        t.Timezone,
		RecurrenceRule:  t.RecurrenceRule,
		CompletedSlots:  t.CompletedSlots,
		ReminderSetting: t.ReminderSetting.Clone(),
		StartTime:       clonePtr(t.StartTime),
		EndTime:         clonePtr(t.EndTime),
		Location:        t.Location,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}, nil
}
