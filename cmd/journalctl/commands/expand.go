package commands

import (
	"github.com/benvon/smart-journal/internal/models"
	"github.com/spf13/cobra"
)

// ExpandOutput lists the occurrences of every template in file order
type ExpandOutput struct {
	Start        string                `json:"start"`
	End          string                `json:"end"`
	Tasks        []*models.Task        `json:"tasks"`
	Transactions []*models.Transaction `json:"transactions"`
}

func newExpandCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "expand",
		Short: "Expand templates into occurrences within a window",
		Example: "  journalctl expand --file templates.yaml --start 2024-03-01 --end 2024-03-31 --timezone Europe/Berlin\n" +
			"  journalctl expand -f templates.json --start 2024-03-01T00:00:00Z --end 2024-03-02T00:00:00Z -o yaml",
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

			tasks, err := expander.ExpandTasks(cmd.Context(), file.Tasks, window.Start, window.End)
			if err != nil {
				return err
			}
			txns, err := expander.ExpandTransactions(cmd.Context(), file.Transactions, window.Start, window.End)
			if err != nil {
				return err
			}
			if tasks == nil {
				tasks = []*models.Task{}
			}
			if txns == nil {
				txns = []*models.Transaction{}
			}

			return write(cmd.OutOrStdout(), opts.output, ExpandOutput{
				Start:        window.Start.Format(timestampLayout),
				End:          window.End.Format(timestampLayout),
				Tasks:        tasks,
				Transactions: txns,
			})
		},
	}
}
