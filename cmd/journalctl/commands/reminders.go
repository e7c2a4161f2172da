package commands

import (
	"time"

	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/benvon/smart-journal/internal/schedule"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const timestampLayout = time.RFC3339

// ReminderLine is one reminder of a task occurrence
type ReminderLine struct {
	TaskID   uuid.UUID `json:"task_id"`
	Name     string    `json:"name"`
	Instant  int64     `json:"instant"`
	RemindAt string    `json:"remind_at"`
	DueDate  string    `json:"due_date"`
	DueTime  string    `json:"due_time"`
}

func newRemindersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "reminders",
		Short:   "List task reminders within a window, earliest first",
		Example: "  journalctl reminders --file templates.yaml --start 2024-03-01 --end 2024-03-07",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadTemplates(opts.file)
			if err != nil {
				return err
			}
			window, err := opts.window()
			if err != nil {
				return err
			}
			expander, l := opts.newExpander()
			defer func() { _ = l.Sync() }()

			records, err := expander.ReminderRecordsForTasks(cmd.Context(), file.Tasks, window.Start, window.End)
			if err != nil {
				return err
			}

			lines := make([]ReminderLine, 0, len(records))
			for _, rec := range schedule.SortedRecords(records) {
				occurrence := records[rec]
				at := time.UnixMilli(rec.Instant)
				if loc, err := recurrence.LoadZone(occurrence.Timezone); err == nil {
					at = at.In(loc)
				}
				lines = append(lines, ReminderLine{
					TaskID:   rec.TaskID,
					Name:     occurrence.Name,
					Instant:  rec.Instant,
					RemindAt: at.Format(timestampLayout),
					DueDate:  occurrence.DueDate,
					DueTime:  occurrence.DueTime,
				})
			}
			return write(cmd.OutOrStdout(), opts.output, lines)
		},
	}
}
