package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	_ Template = (*Task)(nil)
	_ Template = (*Transaction)(nil)
)

func intPtr(i int) *int { return &i }

func TestTask_Clone_Independent(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	orig := &Task{
		ID:             uuid.New(),
		Owner:          "alice",
		Name:           "standup",
		Assignees:      []string{"alice", "bob"},
		Labels:         []string{"work"},
		DueDate:        "2024-03-01",
		DueTime:        "09:00",
		Timezone:       "UTC",
		RecurrenceRule: "FREQ=DAILY",
		ReminderSetting: &ReminderSetting{
			Before:    intPtr(15),
			Overrides: []int{10, 20},
		},
		StartTime: &start,
	}

	clone, err := orig.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	clone.Assignees[0] = "mallory"
	clone.Labels = append(clone.Labels, "extra")
	clone.ReminderSetting.Overrides[0] = 99
	*clone.ReminderSetting.Before = 1
	*clone.StartTime = start.Add(time.Hour)

	if orig.Assignees[0] != "alice" {
		t.Errorf("Expected template assignees untouched, got %v", orig.Assignees)
	}
	if len(orig.Labels) != 1 {
		t.Errorf("Expected template labels untouched, got %v", orig.Labels)
	}
	if orig.ReminderSetting.Overrides[0] != 10 {
		t.Errorf("Expected template overrides untouched, got %v", orig.ReminderSetting.Overrides)
	}
	if *orig.ReminderSetting.Before != 15 {
		t.Errorf("Expected template before untouched, got %d", *orig.ReminderSetting.Before)
	}
	if !orig.StartTime.Equal(start) {
		t.Errorf("Expected template start time untouched, got %v", orig.StartTime)
	}
	if clone.ID != orig.ID {
		t.Errorf("Expected clone to keep template ID")
	}
}

func TestTransaction_Clone_Independent(t *testing.T) {
	t.Parallel()

	orig := &Transaction{
		ID:              uuid.New(),
		Owner:           "alice",
		Name:            "rent",
		Payer:           "landlord",
		Labels:          []string{"home"},
		Amount:          decimal.NewFromInt(1200),
		TransactionType: TransactionTypeExpense,
		Timezone:        "UTC",
	}

	clone, err := orig.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	clone.Labels[0] = "changed"
	clone.Amount = decimal.NewFromInt(1)

	if orig.Labels[0] != "home" {
		t.Errorf("Expected template labels untouched, got %v", orig.Labels)
	}
	if !orig.Amount.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("Expected template amount untouched, got %s", orig.Amount)
	}
}

func TestClone_NilReceiver(t *testing.T) {
	t.Parallel()

	var task *Task
	if _, err := task.Clone(); !errors.Is(err, ErrCloneFailed) {
		t.Errorf("Expected ErrCloneFailed, got %v", err)
	}

	var txn *Transaction
	if _, err := txn.CloneTemplate(); !errors.Is(err, ErrCloneFailed) {
		t.Errorf("Expected ErrCloneFailed, got %v", err)
	}
}

func TestIsRecurring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tmpl Template
		want bool
	}{
		{"nil template", nil, false},
		{"blank rule", &Task{RecurrenceRule: "   "}, false},
		{"task with rule", &Task{RecurrenceRule: "FREQ=DAILY"}, true},
		{"transaction without rule", &Transaction{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRecurring(tt.tmpl); got != tt.want {
				t.Errorf("IsRecurring() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReminderSetting_Modes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		setting      *ReminderSetting
		wantAbsolute bool
		wantRelative bool
	}{
		{"nil", nil, false, false},
		{"empty", &ReminderSetting{}, false, false},
		{"absolute", &ReminderSetting{Date: "2024-01-01", Time: "08:00"}, true, false},
		{"default", &ReminderSetting{UseDefault: true}, false, true},
		{"overrides", &ReminderSetting{Overrides: []int{5}}, false, true},
		{"before", &ReminderSetting{Before: intPtr(0)}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.setting.HasAbsolute(); got != tt.wantAbsolute {
				t.Errorf("HasAbsolute() = %v, want %v", got, tt.wantAbsolute)
			}
			if got := tt.setting.HasRelative(); got != tt.wantRelative {
				t.Errorf("HasRelative() = %v, want %v", got, tt.wantRelative)
			}
		})
	}
}
