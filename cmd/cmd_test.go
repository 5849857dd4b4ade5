// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authscope/authscope-cli/api/schemas"
	"github.com/authscope/authscope-cli/internal/config"
	"github.com/authscope/authscope-cli/internal/observability"
)

const loginPage = `<html><body>
<h1>Sign in to your account</h1>
<form id="login" action="/session" method="post">
  <input type="email" name="email" placeholder="Email address">
  <input type="password" name="password" placeholder="Password">
  <button type="submit">Sign In</button>
</form>
</body></html>`

const newsletterPage = `<html><body>
<article>Ten ways to water a cactus.</article>
<footer>
  <p>Subscribe to our newsletter</p>
  <input type="email" name="email" placeholder="Email address">
  <button>Subscribe</button>
</footer>
</body></html>`

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) {
	t.Helper()

	viper.Reset()
	cfgFile = ""

	// Silence the logger. The once-guarded initializer inside
	// PersistentPreRunE becomes a no-op after this.
	observability.ResetForTest()
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})

	// Point the history file at a throwaway location so tests never touch
	// the real home directory.
	t.Setenv("AUTHSCOPE_HISTORY_PATH", filepath.Join(t.TempDir(), "history.json"))

	rootCmd = newPristineRootCmd()
}

// newPristineRootCmd rebuilds the root command from scratch, mirroring the
// initialization in root.go, so Cobra state never leaks between tests.
func newPristineRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "authscope",
		Short:   "Authscope finds credential-entry surfaces in web pages.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(); err != nil {
				return err
			}
			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}
			observability.InitializeLogger(cfg.Logger)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./authscope.yaml)")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newHistoryCmd())
	return cmd
}

// execute runs the pristine root command with the given args and returns its
// combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTempHTML(t *testing.T, markup string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(markup), 0o644))
	return path
}

func TestRootCmd_VersionFlag(t *testing.T) {
	resetForTest(t)

	out, err := execute(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestDetectCmd_LocalFileText(t *testing.T) {
	resetForTest(t)
	page := writeTempHTML(t, loginPage)
	report := filepath.Join(t.TempDir(), "report.txt")

	_, err := execute(t, "detect", "--file", page, "-o", report, "-f", "text")
	require.NoError(t, err)

	content, err := os.ReadFile(report)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "Target:    "+page)
	assert.Contains(t, text, "Result:    Form Detected")
	assert.Contains(t, text, "1 password input(s)")
	assert.Contains(t, text, "Container:")
}

func TestDetectCmd_LocalFileJSON(t *testing.T) {
	resetForTest(t)
	page := writeTempHTML(t, loginPage)
	report := filepath.Join(t.TempDir(), "report.json")

	_, err := execute(t, "detect", "--file", page, "-o", report, "-f", "json")
	require.NoError(t, err)

	content, err := os.ReadFile(report)
	require.NoError(t, err)

	var parsed struct {
		Detections []schemas.DetectionEnvelope `json:"detections"`
	}
	require.NoError(t, json.Unmarshal(content, &parsed))
	require.Len(t, parsed.Detections, 1)

	env := parsed.Detections[0]
	assert.Equal(t, page, env.Target)
	assert.Equal(t, schemas.StrictnessPermissive, env.Mode)
	assert.True(t, env.Form.HasPasswordInput)
	assert.Len(t, env.Form.PasswordInputs, 1)
	assert.NotEmpty(t, env.DetectionID)
	assert.NotEmpty(t, env.Summary)
	assert.NotEmpty(t, env.Excerpt)
	assert.False(t, env.DetectedAt.IsZero())
}

// A bare newsletter signup is accepted under permissive matching (email-first
// flows count) but must be suppressed under strict.
func TestDetectCmd_ModeFlagControlsStrictness(t *testing.T) {
	page := writeTempHTML(t, newsletterPage)

	runMode := func(t *testing.T, mode string) schemas.DetectionEnvelope {
		resetForTest(t)
		report := filepath.Join(t.TempDir(), "report.json")
		_, err := execute(t, "detect", "--file", page, "-o", report, "-f", "json", "--mode", mode)
		require.NoError(t, err)

		content, err := os.ReadFile(report)
		require.NoError(t, err)
		var parsed struct {
			Detections []schemas.DetectionEnvelope `json:"detections"`
		}
		require.NoError(t, json.Unmarshal(content, &parsed))
		require.Len(t, parsed.Detections, 1)
		return parsed.Detections[0]
	}

	permissive := runMode(t, "permissive")
	assert.True(t, permissive.Form.HasPasswordInput, "permissive mode should admit the email-only surface")
	assert.Empty(t, permissive.Form.PasswordInputs)

	strict := runMode(t, "strict")
	assert.Equal(t, schemas.StrictnessStrict, strict.Mode)
	assert.False(t, strict.Form.HasPasswordInput, "strict mode should suppress the newsletter field")
	assert.Empty(t, strict.Form.OtherInputs)
}

func TestDetectCmd_NoTargets(t *testing.T) {
	resetForTest(t)

	_, err := execute(t, "detect")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to analyze")
}

func TestDetectCmd_UnsupportedFormat(t *testing.T) {
	resetForTest(t)
	page := writeTempHTML(t, loginPage)

	_, err := execute(t, "detect", "--file", page, "-f", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestDetectCmd_InvalidMode(t *testing.T) {
	resetForTest(t)
	page := writeTempHTML(t, loginPage)

	_, err := execute(t, "detect", "--file", page, "--mode", "paranoid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "detector.mode")
}

func TestHistoryCmd_Empty(t *testing.T) {
	resetForTest(t)

	out, err := execute(t, "history")

	require.NoError(t, err)
	assert.Contains(t, out, "No history yet.")
}
