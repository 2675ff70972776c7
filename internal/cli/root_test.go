package cli

import (
	"strings"
	"testing"
)

func TestRootCommand_RegistersEverySubcommand(t *testing.T) {
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range []string{
		"sand-used", "wet-density", "moisture", "dry-density", "compaction",
		"rock-correction", "lab-max", "report", "metrics", "dashboard", "mcp", "version",
	} {
		if !registered[name] {
			t.Errorf("command %q not registered on root", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	t.Cleanup(func() { SetVersionInfo(origVersion, origCommit, origDate) })

	SetVersionInfo("0.4.0", "9f2c1ab", "2026-05-04")

	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"billios 0.4.0", "commit: 9f2c1ab", "built:  2026-05-04"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output %q missing %q", out, want)
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	_, err := executeCommand(t, "proctor")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `unknown command "proctor"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFormulaCommands_RejectPositionalArgs(t *testing.T) {
	if _, err := executeCommand(t, "sand-used", "14.65"); err == nil {
		t.Error("expected positional arguments to be rejected")
	}
}
