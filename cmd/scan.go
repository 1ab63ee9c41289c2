package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"a11yscan.dev/pkg/a11yscan/internal/adapter"
	"a11yscan.dev/pkg/a11yscan/internal/domain"
	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

var scanRootFlag string

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan HTML documents for accessibility violations",
		Long: `Render every document of the work-set in a headless browser, run the
accessibility rules against it and write HTML and JSON reports. The
command exits non-zero when the run verdict is fail.`,
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindScanFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Runtime failures past this point are not usage errors.
			cmd.SilenceUsage = true

			runCtx, err := buildRunContext()
			if err != nil {
				return err
			}

			evaluator, err := adapter.NewAxeEvaluator(viper.GetString(axeScriptKey))
			if err != nil {
				return fmt.Errorf("load accessibility rules: %w", err)
			}

			browser := adapter.NewChromeBrowser()
			workflow := domain.NewWorkflow(fsAdapter, diffAdapter, browser, evaluator, reportStore, ui)

			err = workflow.Scan(cmd.Context(), runCtx)
			if errors.Is(err, domain.ErrComplianceFailure) {
				cmd.SilenceErrors = true
			}

			return err
		},
	}

	configureScanFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func configureScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(modeFlagName, "m", viper.GetString(scanModeKey), "work-set mode: auto, all or affected")
	cmd.Flags().String(targetRefFlag, viper.GetString(scanTargetKey), "target branch for affected-mode diffs (defaults to the CI base ref)")
	cmd.Flags().IntP(parallelFlagName, "p", viper.GetInt(scanParallelKey), "number of documents scanned concurrently")
	cmd.Flags().Int(maxFilesFlagName, viper.GetInt(scanMaxFilesKey), "cap on the number of documents per run")
	cmd.Flags().Duration(timeoutFlagName, viper.GetDuration(scanTimeoutKey), "per-document render and evaluation timeout")
	cmd.Flags().StringVar(&scanRootFlag, rootFlagName, "", "repository root to scan (defaults to the CI workspace or the working directory)")
}

// bindScanFlags attaches the executed command's flag set to the config
// keys. Binding at run time keeps the scan and list commands, which
// share the same flag set, from clobbering each other's bindings.
func bindScanFlags(cmd *cobra.Command) {
	bindFlagToConfig(cmd.Flags().Lookup(modeFlagName), scanModeKey)
	bindFlagToConfig(cmd.Flags().Lookup(targetRefFlag), scanTargetKey)
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), scanParallelKey)
	bindFlagToConfig(cmd.Flags().Lookup(maxFilesFlagName), scanMaxFilesKey)
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), scanTimeoutKey)
}

// buildRunContext assembles the immutable run configuration from flags,
// config and the CI environment.
func buildRunContext() (*m.RunContext, error) {
	root, err := resolveRepoRoot(scanRootFlag)
	if err != nil {
		return nil, err
	}

	return &m.RunContext{
		EventKind:     detectEventKind(),
		TargetRef:     resolveTargetRef(),
		RequestedMode: m.ParseScanMode(viper.GetString(scanModeKey)),

		RepoRoot:  root,
		OutputDir: m.Path(viper.GetString(outputFlagName)),

		MaxFiles:       viper.GetInt(scanMaxFilesKey),
		PerFileTimeout: viper.GetDuration(scanTimeoutKey),
		Parallel:       viper.GetInt(scanParallelKey),

		ExcludedDirs:         m.ExcludedDirSet(viper.GetStringSlice(excludeDirsKey)),
		ExcludedFilePatterns: viper.GetStringSlice(excludeConfigKey),

		Policy: m.ParseVerdictPolicy(viper.GetString(failOnKey)),
	}, nil
}

// detectEventKind reads the CI event from the environment. Local runs
// and unknown events count as "other" and scan the full tree by default.
func detectEventKind() m.EventKind {
	switch os.Getenv("GITHUB_EVENT_NAME") {
	case "pull_request", "pull_request_target":
		return m.EventPullRequest
	case "push":
		return m.EventPush
	default:
		return m.EventOther
	}
}

// resolveTargetRef prefers the explicit flag/config value over the CI
// base ref. Empty means no diff context is available.
func resolveTargetRef() string {
	if ref := viper.GetString(scanTargetKey); ref != "" {
		return ref
	}

	return os.Getenv("GITHUB_BASE_REF")
}

func resolveRepoRoot(flagValue string) (m.Path, error) {
	root := flagValue
	if root == "" {
		root = os.Getenv("GITHUB_WORKSPACE")
	}

	if root == "" {
		root = "."
	}

	abs, err := fsAdapter.Abs(m.Path(root))
	if err != nil {
		return "", fmt.Errorf("resolve repository root %s: %w", root, err)
	}

	return abs, nil
}
