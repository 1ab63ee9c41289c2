package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

func TestDetectEventKind(t *testing.T) {
	tests := []struct {
		name  string
		event string
		want  m.EventKind
	}{
		{"pull request", "pull_request", m.EventPullRequest},
		{"pull request target", "pull_request_target", m.EventPullRequest},
		{"push", "push", m.EventPush},
		{"schedule", "schedule", m.EventOther},
		{"local run", "", m.EventOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITHUB_EVENT_NAME", tt.event)
			assert.Equal(t, tt.want, detectEventKind())
		})
	}
}

func TestResolveTargetRef_EnvFallback(t *testing.T) {
	t.Setenv("GITHUB_BASE_REF", "develop")

	assert.Equal(t, "develop", resolveTargetRef())
}

func TestResolveRepoRoot(t *testing.T) {
	dir := t.TempDir()

	root, err := resolveRepoRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, m.Path(dir), root)
}

func TestResolveRepoRoot_WorkspaceEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GITHUB_WORKSPACE", dir)

	root, err := resolveRepoRoot("")
	require.NoError(t, err)
	assert.Equal(t, m.Path(dir), root)
}

func TestBuildRunContext_Defaults(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "push")
	t.Setenv("GITHUB_WORKSPACE", t.TempDir())

	previousRoot := scanRootFlag
	scanRootFlag = ""
	t.Cleanup(func() { scanRootFlag = previousRoot })

	runCtx, err := buildRunContext()
	require.NoError(t, err)

	assert.Equal(t, m.EventPush, runCtx.EventKind)
	assert.Equal(t, m.ModeAuto, runCtx.RequestedMode)
	assert.Equal(t, 1000, runCtx.MaxFiles)
	assert.Equal(t, 120*time.Second, runCtx.PerFileTimeout)
	assert.Equal(t, 2, runCtx.Parallel)
	assert.Equal(t, m.PolicyStrict, runCtx.Policy)
	assert.Contains(t, runCtx.ExcludedDirs, "node_modules")
}

func TestNewScanCmd_Flags(t *testing.T) {
	cmd := newScanCmd()

	for _, name := range []string{modeFlagName, targetRefFlag, parallelFlagName, maxFilesFlagName, timeoutFlagName, rootFlagName} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
