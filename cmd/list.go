package cmd

import (
	"github.com/spf13/cobra"

	"a11yscan.dev/pkg/a11yscan/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the documents a scan would cover",
		Long: `Resolve the work-set exactly as the scan command would, using the same
mode, diff and exclusion settings, and print the document paths without
rendering anything.`,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindScanFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			runCtx, err := buildRunContext()
			if err != nil {
				return err
			}

			workflow := domain.NewWorkflow(fsAdapter, diffAdapter, nil, nil, reportStore, ui)

			return workflow.List(cmd.Context(), runCtx)
		},
	}

	configureScanFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
