package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clickplan/internal/constants"
	cperrors "github.com/mrz1836/clickplan/internal/errors"
)

// isolate points the global config and log directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(constants.HomeEnvVar, home)
	t.Cleanup(CloseLogFile)
	return home
}

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

// executeContext is execute under ctx.
func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "1.2.3"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// scene is a noise frame with button.png cut from it at centre (16, 10)
// and blank.png, a white patch that appears nowhere in the frame.
type scene struct {
	dir   string
	frame *image.Gray
}

func newScene(t *testing.T) *scene {
	t.Helper()
	rng := rand.New(rand.NewPCG(10, 10)) //nolint:gosec // test data
	frame := image.NewGray(image.Rect(0, 0, 40, 30))
	for i := range frame.Pix {
		frame.Pix[i] = uint8(rng.IntN(256))
	}

	blank := image.NewGray(image.Rect(0, 0, 8, 6))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}

	s := &scene{dir: t.TempDir(), frame: frame}
	s.writePNG(t, "button.png", frame.SubImage(image.Rect(12, 7, 20, 13)))
	s.writePNG(t, "blank.png", blank)
	return s
}

func (s *scene) writePNG(t *testing.T, name string, img image.Image) {
	t.Helper()
	f, err := os.Create(filepath.Join(s.dir, name)) //nolint:gosec // test file
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func (s *scene) writePlan(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(s.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRootCmd_Help(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "clickplan runs plans of visual click tasks")
	for _, sub := range []string{"run", "validate", "config"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "--output")
}

func TestRootCmd_Version(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3 (commit: none, built: unknown)")
}

func TestRootCmd_InvalidOutputFormat(t *testing.T) {
	isolate(t)
	_, err := execute(t, "config", "show", "--output", "xml")
	require.ErrorIs(t, err, cperrors.ErrInvalidOutputFormat)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCmd_VerboseAndQuietConflict(t *testing.T) {
	isolate(t)
	_, err := execute(t, "config", "show", "--verbose", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev (commit: none, built: unknown)", formatVersion(BuildInfo{}))
	assert.Equal(t, "1.0.0 (commit: abc123, built: 2026-01-02)",
		formatVersion(BuildInfo{Version: "1.0.0", Commit: "abc123", Date: "2026-01-02"}))
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit code 2", cperrors.NewExitCode2Error(cperrors.ErrPlanInvalid), ExitInvalidInput},
		{"wrapped exit code 2", fmt.Errorf("outer: %w", cperrors.NewExitCode2Error(errors.New("x"))), ExitInvalidInput},
		{"output format", cperrors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"unknown flag", errors.New("unknown flag: --nope"), ExitInvalidInput},
		{"arg count", errors.New("accepts 1 arg(s), received 0"), ExitInvalidInput},
		{"run failed", cperrors.ErrRunFailed, ExitError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat("text"))
	assert.True(t, IsValidOutputFormat("json"))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestSelectLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, false))
	assert.Equal(t, zerolog.WarnLevel, selectLevel(false, true))
	assert.Equal(t, zerolog.InfoLevel, selectLevel(false, false))
}

func TestInitLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, true, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("group", "login").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"event":"shown"`)
	assert.Contains(t, out, `"group":"login"`)
	assert.Contains(t, out, `"ts":`)
}

func TestLogFilePath(t *testing.T) {
	home := isolate(t)
	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.LogsDir, constants.CLILogFileName), path)
}

func TestPrintError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	printError(&buf, cperrors.NewExitCode2Error(cperrors.Wrap(cperrors.ErrPlanNotFound, "plan.yaml")))

	out := buf.String()
	assert.Contains(t, out, "plan.yaml: plan file not found")
	assert.Contains(t, out, "The plan file could not be found.")
	assert.Contains(t, out, "Try: Check the path passed to 'clickplan run'.")
}
