package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestEnv isolates the config loader from the developer's files and
// environment.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{"GROQ_API_KEY", "GEMINI_API_KEY", "TAVILY_API_KEY", "INTERVIEWAI_ADDR"} {
		t.Setenv(k, "")
	}
	return dir
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	verbose = false
	configPath = ""
	globalConfig = nil

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		if stderr == "" {
			stderr = err.Error()
		}
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestVersion(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.HasPrefix(stdout, "interviewai dev") {
		t.Fatalf("expected 'interviewai dev', got: %s", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(stdout), &got); err != nil || got["version"] != "dev" {
		t.Fatalf("expected JSON with version, got: %s (%v)", stdout, err)
	}
}

func TestVersionBadFormat(t *testing.T) {
	setupTestEnv(t)

	_, stderr, code := runCmd(t, "version", "--format", "xml")
	if code == 0 || !strings.Contains(stderr, "unsupported output format") {
		t.Fatalf("exit %d, stderr %s", code, stderr)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := setupTestEnv(t)
	path := filepath.Join(dir, "cfg", "config.yaml")

	stdout, stderr, code := runCmd(t, "--config", path, "config", "init")
	if code != 0 {
		t.Fatalf("init exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, path) {
		t.Errorf("init output = %s", stdout)
	}
	if _, _, code := runCmd(t, "--config", path, "config", "init"); code == 0 {
		t.Error("second init without --force should fail")
	}

	t.Setenv("GROQ_API_KEY", "gsk_0123456789abcdef")
	stdout, stderr, code = runCmd(t, "--config", path, "config", "show")
	if code != 0 {
		t.Fatalf("show exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "gsk_****cdef") || strings.Contains(stdout, "0123456789") {
		t.Errorf("api key should be masked, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "text_model: llama-3.3-70b-versatile") {
		t.Errorf("show output missing text model:\n%s", stdout)
	}
}

func TestConfigShowMissingExplicitFile(t *testing.T) {
	dir := setupTestEnv(t)

	_, stderr, code := runCmd(t, "--config", filepath.Join(dir, "nope.yaml"), "config", "show")
	if code == 0 || !strings.Contains(stderr, "config not available") {
		t.Fatalf("exit %d, stderr %s", code, stderr)
	}
}

func TestAskRequiresAPIKey(t *testing.T) {
	setupTestEnv(t)

	_, stderr, code := runCmd(t, "ask", "Tell me about yourself")
	if code == 0 || !strings.Contains(stderr, "GROQ_API_KEY") {
		t.Fatalf("exit %d, stderr %s", code, stderr)
	}
}

func TestAskMissingResume(t *testing.T) {
	setupTestEnv(t)

	_, stderr, code := runCmd(t, "ask", "q", "--resume", "missing.txt")
	if code == 0 || !strings.Contains(stderr, "missing.txt") {
		t.Fatalf("exit %d, stderr %s", code, stderr)
	}
}

func TestSolveMissingImage(t *testing.T) {
	dir := setupTestEnv(t)

	_, stderr, code := runCmd(t, "solve", filepath.Join(dir, "shot.png"))
	if code == 0 || !strings.Contains(stderr, "shot.png") {
		t.Fatalf("exit %d, stderr %s", code, stderr)
	}
	if _, _, code := runCmd(t, "solve"); code == 0 {
		t.Error("solve without an argument should fail")
	}
}

func TestReadOptional(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jd.txt")
	os.WriteFile(path, []byte("Senior Go engineer"), 0644)

	if got, err := readOptional(path); err != nil || got != "Senior Go engineer" {
		t.Errorf("readOptional = %q, %v", got, err)
	}
	if got, err := readOptional(""); err != nil || got != "" {
		t.Errorf("readOptional(\"\") = %q, %v", got, err)
	}
}
