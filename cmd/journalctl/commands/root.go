package commands

import (
	"time"

	"github.com/benvon/smart-journal/internal/logger"
	"github.com/benvon/smart-journal/internal/request"
	"github.com/benvon/smart-journal/internal/schedule"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds the flags shared by every subcommand
type options struct {
	file      string
	output    string
	timezone  string
	start     string
	end       string
	maxWindow time.Duration
	debug     bool
}

// NewRootCmd builds the journalctl command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "Expand smart-journal templates offline",
		Long:          "Expand task and transaction templates from a YAML or JSON file, list reminders and summarise the ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "template file with tasks: and transactions: lists (.yaml, .yml or .json)")
	flags.StringVarP(&opts.output, "output", "o", formatJSON, "output format: json or yaml")
	flags.StringVar(&opts.timezone, "timezone", "UTC", "zone applied to plain --start/--end dates")
	flags.StringVar(&opts.start, "start", "", "window start, RFC3339 or YYYY-MM-DD")
	flags.StringVar(&opts.end, "end", "", "window end, RFC3339 or YYYY-MM-DD (inclusive)")
	flags.DurationVar(&opts.maxWindow, "max-window", request.DefaultMaxSpan, "longest --start/--end window accepted")
	flags.BoolVar(&opts.debug, "debug", false, "log expansion details to stderr")

	cmd.AddCommand(newExpandCmd(opts))
	cmd.AddCommand(newRemindersCmd(opts))
	cmd.AddCommand(newSummaryCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// newExpander builds an expander logging to stderr; logger construction failures fall back to no logging
func (o *options) newExpander() (*schedule.Expander, *zap.Logger) {
	l, err := logger.NewDevelopmentLogger(o.debug)
	if err != nil {
		l = zap.NewNop()
	}
	return schedule.NewExpander(schedule.WithLogger(l)), l
}
