package commands

import (
	"strings"

	"github.com/benvon/smart-journal/internal/ledger"
	"github.com/benvon/smart-journal/internal/validation"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var summaryType, frequency string
	var withTransactions bool
	cmd := &cobra.Command{
		Use:     "summary",
		Short:   "Summarise transaction occurrences within a window",
		Example: "  journalctl summary --file ledger.yaml --start 2024-01-01 --end 2024-12-31 --type PAYER",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ledger.SummaryRequest{Type: ledger.SummaryType(strings.ToUpper(summaryType))}
			if err := validation.ValidateSummaryType(string(req.Type)); err != nil {
				return err
			}
			if req.Type == ledger.SummaryTypeDefault {
				req.Frequency = ledger.FrequencyType(strings.ToUpper(frequency))
				if err := validation.ValidateFrequency(string(req.Frequency)); err != nil {
					return err
				}
			}

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

			req.Start, req.End = window.Start, window.End
			req.Transactions, err = expander.ExpandTransactions(cmd.Context(), file.Transactions, window.Start, window.End)
			if err != nil {
				return err
			}
			summary, err := ledger.Calculate(req)
			if err != nil {
				return err
			}
			if !withTransactions {
				summary.Transactions = nil
			}
			return write(cmd.OutOrStdout(), opts.output, summary)
		},
	}
	cmd.Flags().StringVar(&summaryType, "type", string(ledger.SummaryTypeDefault), "grouping: DEFAULT, LABEL or PAYER")
	cmd.Flags().StringVar(&frequency, "frequency", string(ledger.FrequencyMonthly), "DEFAULT bucket size: WEEKLY, MONTHLY or YEARLY")
	cmd.Flags().BoolVar(&withTransactions, "with-transactions", false, "include the expanded transactions in the output")
	return cmd
}
