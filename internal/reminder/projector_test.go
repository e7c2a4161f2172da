package reminder

import (
	"testing"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestProject(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		setting  *models.ReminderSetting
		timezone string
		want     bool
		wantDate string
		wantTime string
	}{
		{
			name: "no configuration",
			want: false,
		},
		{
			name:    "empty configuration",
			setting: &models.ReminderSetting{},
			want:    false,
		},
		{
			name:     "default lead",
			setting:  &models.ReminderSetting{UseDefault: true},
			timezone: "UTC",
			want:     true,
			wantDate: "2024-06-10",
			wantTime: "08:30",
		},
		{
			name:     "largest override wins",
			setting:  &models.ReminderSetting{Overrides: []int{10, 45, 20}},
			timezone: "UTC",
			want:     true,
			wantDate: "2024-06-10",
			wantTime: "08:15",
		},
		{
			name:     "default takes precedence over overrides",
			setting:  &models.ReminderSetting{UseDefault: true, Overrides: []int{120}},
			timezone: "UTC",
			want:     true,
			wantDate: "2024-06-10",
			wantTime: "08:30",
		},
		{
			name:     "before minutes",
			setting:  &models.ReminderSetting{Before: intPtr(600)},
			timezone: "UTC",
			want:     true,
			wantDate: "2024-06-09",
			wantTime: "23:00",
		},
		{
			name:     "rendered in task timezone",
			setting:  &models.ReminderSetting{UseDefault: true},
			timezone: "Asia/Tokyo",
			want:     true,
			wantDate: "2024-06-10",
			wantTime: "17:30",
		},
		{
			name:     "unknown timezone",
			setting:  &models.ReminderSetting{UseDefault: true},
			timezone: "Mars/Olympus",
			want:     false,
		},
		{
			name:     "absolute kept",
			setting:  &models.ReminderSetting{Date: "2024-06-01", Time: "07:00"},
			timezone: "UTC",
			want:     true,
			wantDate: "2024-06-01",
			wantTime: "07:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &models.Task{ID: uuid.New(), Timezone: tt.timezone, ReminderSetting: tt.setting}

			got, ok := Project(task, start).Get()
			require.Equal(t, tt.want, ok)
			if !tt.want {
				return
			}
			assert.Equal(t, tt.wantDate, got.Date)
			assert.Equal(t, tt.wantTime, got.Time)
		})
	}
}

func TestProject_DoesNotMutateTask(t *testing.T) {
	setting := &models.ReminderSetting{Overrides: []int{10, 45, 20}}
	task := &models.Task{Timezone: "UTC", ReminderSetting: setting}

	got, ok := Project(task, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)).Get()
	require.True(t, ok)
	got.Overrides[0] = 1

	assert.Empty(t, setting.Date)
	assert.Equal(t, []int{10, 45, 20}, setting.Overrides)
}

func TestInstant(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task *models.Task
		want time.Time
		ok   bool
	}{
		{
			name: "nil task",
			ok:   false,
		},
		{
			name: "relative from start time",
			task: &models.Task{Timezone: "UTC", StartTime: &start, ReminderSetting: &models.ReminderSetting{Overrides: []int{10, 45, 20}}},
			want: start.Add(-45 * time.Minute),
			ok:   true,
		},
		{
			name: "relative from due date",
			task: &models.Task{Timezone: "UTC", DueDate: "2024-06-10", DueTime: "09:00", ReminderSetting: &models.ReminderSetting{UseDefault: true}},
			want: start.Add(-30 * time.Minute),
			ok:   true,
		},
		{
			name: "relative without any start",
			task: &models.Task{Timezone: "UTC", ReminderSetting: &models.ReminderSetting{UseDefault: true}},
			ok:   false,
		},
		{
			name: "absolute",
			task: &models.Task{Timezone: "UTC", ReminderSetting: &models.ReminderSetting{Date: "2024-06-10", Time: "06:00"}},
			want: time.Date(2024, 6, 10, 6, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "no reminder",
			task: &models.Task{Timezone: "UTC", StartTime: &start},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Instant(tt.task)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_Equality(t *testing.T) {
	id := uuid.New()
	at := time.Date(2024, 6, 10, 8, 15, 0, 0, time.UTC)
	task := &models.Task{ID: id}

	a := Record(task, at)
	b := Record(task, at.In(time.FixedZone("X", 3600)))
	c := Record(task, at.Add(time.Minute))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	seen := map[models.ReminderRecord]bool{a: true}
	assert.True(t, seen[b])
}
