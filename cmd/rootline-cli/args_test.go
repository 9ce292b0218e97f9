package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds a root command tree identical to main() but with
// PersistentPreRun stubbed out so the API client is never initialised.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "rootline",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Skip client initialisation in tests.
		},
	}
	root.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "")
	root.PersistentFlags().StringVar(&flagKey, "api-key", "", "")
	root.PersistentFlags().StringVar(&flagFmt, "format", "json", "")

	root.AddCommand(newParseCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newPersonCmd())
	return root
}

// --- import ---

func TestImportPrepareArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing upload id", []string{"import", "prepare", "--file", "x.ged"}},
		{"too many args", []string{"import", "prepare", "up-1", "extra", "--file", "x.ged"}},
		{"missing required --file", []string{"import", "prepare", "up-1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := newTestRoot()
			if err := executeArgs(t, root, tc.args...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestImportGetRequiresTwoArgs(t *testing.T) {
	argsValidator := cobra.ExactArgs(2)

	cases := []struct {
		args    []string
		wantErr bool
	}{
		{[]string{"up-1", "I1"}, false},
		{[]string{"up-1"}, true},
		{[]string{}, true},
		{[]string{"a", "b", "c"}, true},
	}
	for _, tc := range cases {
		err := argsValidator(nil, tc.args)
		if tc.wantErr && err == nil {
			t.Errorf("args %v: expected error", tc.args)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("args %v: unexpected error: %v", tc.args, err)
		}
	}
}

func TestImportSingleArgCommands(t *testing.T) {
	subcommands := []string{"list", "tree", "stats", "decisions", "discard"}
	for _, sub := range subcommands {
		t.Run(sub, func(t *testing.T) {
			root := newTestRoot()
			if err := executeArgs(t, root, "import", sub); err == nil {
				t.Errorf("%s: zero args should be rejected", sub)
			}
		})
	}
}

func TestImportListFlagDefaults(t *testing.T) {
	cmd := importListCmd()

	cases := []struct {
		flag string
		want string
	}{
		{"page", "1"},
		{"limit", "50"},
		{"sort-by", ""},
		{"sort-order", ""},
		{"search", ""},
	}
	for _, tc := range cases {
		f := cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Errorf("--%s flag not found", tc.flag)
			continue
		}
		if f.DefValue != tc.want {
			t.Errorf("--%s default: got %q, want %q", tc.flag, f.DefValue, tc.want)
		}
	}
}

// --- merge ---

func TestMergeCommandsRequireTwoArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"preview no args", []string{"merge", "preview"}},
		{"preview one arg", []string{"merge", "preview", "src-id"}},
		{"run no args", []string{"merge", "run"}},
		{"run three args", []string{"merge", "run", "a", "b", "c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := newTestRoot()
			if err := executeArgs(t, root, tc.args...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestMergeGenderMismatchFlag(t *testing.T) {
	for _, build := range []func() *cobra.Command{mergePreviewCmd, mergeExecuteCmd} {
		cmd := build()
		f := cmd.Flags().Lookup("allow-gender-mismatch")
		if f == nil {
			t.Fatalf("%s: --allow-gender-mismatch flag not found", cmd.Use)
		}
		if f.DefValue != "false" {
			t.Errorf("%s: default: got %q, want false", cmd.Use, f.DefValue)
		}
	}
}

// --- parse (offline) ---

func TestParseCommand(t *testing.T) {
	resetFlags(t)
	flagFmt = "json"

	dir := t.TempDir()
	path := filepath.Join(dir, "tree.ged")
	content := "0 HEAD\n1 GEDC\n2 VERS 5.5.1\n" +
		"0 @I1@ INDI\n1 NAME Anna /Smith/\n1 SEX F\n" +
		"0 TRLR\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	root := newTestRoot()

	out := captureStdout(t, func() {
		if err := executeArgs(t, root, "parse", path, "--stats"); err != nil {
			t.Errorf("parse: unexpected error: %v", err)
		}
	})

	if !strings.Contains(out, `"success": true`) {
		t.Errorf("expected success report, got: %s", out)
	}
	if !strings.Contains(out, `"5.5.1"`) {
		t.Errorf("expected version in report, got: %s", out)
	}
}

func TestParseCommand_UnsupportedVersion(t *testing.T) {
	resetFlags(t)
	flagFmt = "json"

	dir := t.TempDir()
	path := filepath.Join(dir, "old.ged")
	content := "0 HEAD\n1 GEDC\n2 VERS 4.0\n0 TRLR\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	root := newTestRoot()

	captureStdout(t, func() {
		if err := executeArgs(t, root, "parse", path); err == nil {
			t.Error("expected error for unsupported version")
		}
	})
}

func TestParseCommand_MissingFile(t *testing.T) {
	root := newTestRoot()
	if err := executeArgs(t, root, "parse", "/nonexistent/file.ged"); err == nil {
		t.Error("expected error for missing file")
	}
}

// --- global format flag ---

func TestFormatFlagDefault(t *testing.T) {
	root := newTestRoot()
	f := root.PersistentFlags().Lookup("format")
	if f == nil {
		t.Fatal("--format flag not found")
	}
	if f.DefValue != "json" {
		t.Errorf("default format: got %q, want %q", f.DefValue, "json")
	}
}

// TestFormatFlagValues verifies that accepted format values are "json",
// "table", and "quiet", the only strings the output functions branch on.
func TestFormatFlagValues(t *testing.T) {
	resetFlags(t)
	for _, f := range []string{"json", "table", "quiet"} {
		flagFmt = f
		// output() must not panic for any of these values.
		captureStdout(t, func() { output(map[string]string{"k": "v"}, "id") })
	}
}
