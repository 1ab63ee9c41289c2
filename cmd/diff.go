package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"a11yscan.dev/pkg/a11yscan/internal/domain"
	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff BASELINE CURRENT",
		Short: "Compare two JSON scan reports",
		Long: `Compare the violations of two saved JSON reports and print the classes
introduced and resolved between them. The command exits non-zero when
the current report introduces violations absent from the baseline.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			workflow := domain.NewWorkflow(fsAdapter, diffAdapter, nil, nil, reportStore, ui)

			err := workflow.CompareReports(m.Path(args[0]), m.Path(args[1]))
			if errors.Is(err, domain.ErrComplianceFailure) {
				cmd.SilenceErrors = true
			}

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
