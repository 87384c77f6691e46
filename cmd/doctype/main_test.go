package main

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/spf13/cobra"

	"github.com/doctypetool/doctype/pkg/cli"
)

func TestCommandTree(t *testing.T) {
	want := []string{"report", "watch", "mcp", "config", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("subcommand %q is not registered", name)
		}
	}

	for _, name := range []string{"schema", "check"} {
		if cmd, _, err := configCmd.Find([]string{name}); err != nil || cmd == configCmd {
			t.Errorf("config subcommand %q is not registered", name)
		}
	}
}

func TestOverrideFlags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{"system-id", "s"},
		{"public-id", "p"},
		{"omit-system-id", "S"},
		{"omit-public-id", "P"},
		{"root", "r"},
		{"quiet", "q"},
		{"format", "f"},
		{"verbose", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := rootCmd.PersistentFlags().Lookup(tt.name)
			if f == nil {
				t.Fatalf("flag --%s is not registered", tt.name)
			}
			if f.Shorthand != tt.shorthand {
				t.Errorf("flag --%s shorthand = %q, want %q", tt.name, f.Shorthand, tt.shorthand)
			}
		})
	}

	if rootCmd.Flags().Lookup("output") == nil {
		t.Error("flag --output is not registered on the root command")
	}
	if reportCmd.Flags().Lookup("jobs") == nil {
		t.Error("flag --jobs is not registered on the report command")
	}
}

func TestSubcommandsInheritOverrideFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{reportCmd, watchCmd} {
		if cmd.InheritedFlags().Lookup("system-id") == nil {
			t.Errorf("%s does not inherit --system-id", cmd.Name())
		}
	}
}

func TestFlagName(t *testing.T) {
	if got := flagName("--omit-public-id"); got != "omit-public-id" {
		t.Errorf("flagName() = %q", got)
	}
}

// buildBinary compiles the CLI into a temporary directory
func buildBinary(t *testing.T) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "doctype")
	build := exec.Command("go", "build", "-o", binary, ".")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("failed to build doctype binary: %v", err)
	}
	return binary
}

// runInPTY runs the binary with a terminal attached and returns everything it printed
func runInPTY(t *testing.T, cmd *exec.Cmd) (string, error) {
	t.Helper()
	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Fatalf("failed to start PTY: %v", err)
	}
	defer func() { _ = ptmx.Close() }() // Best effort

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, ptmx)
		close(done)
	}()

	err = cmd.Wait()
	select {
	case <-done:
	case <-time.After(750 * time.Millisecond):
	}
	return buf.String(), err
}

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	binary := buildBinary(t)
	dir := t.TempDir()

	doc := filepath.Join(dir, "page.xml")
	content := "<!DOCTYPE page PUBLIC \"-//Example//DTD Page//EN\" \"page.dtd\">\n<page/>\n"
	if err := os.WriteFile(doc, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	t.Run("rewrite", func(t *testing.T) {
		cmd := exec.Command(binary, "-P", "-s", "local.dtd", "--color", "never", doc)
		cmd.Dir = dir
		output, err := runInPTY(t, cmd)
		if err != nil {
			t.Fatalf("rewrite failed: %v\nOutput:\n%s", err, output)
		}
		if !strings.Contains(output, `<!DOCTYPE page SYSTEM "local.dtd">`) {
			t.Errorf("rewritten declaration missing from output:\n%s", output)
		}
		if !strings.Contains(output, "root='page'") {
			t.Errorf("report missing from output:\n%s", output)
		}
	})

	t.Run("conflicting options exit with usage code", func(t *testing.T) {
		cmd := exec.Command(binary, "-p", "x", "-P", "--color", "never", doc)
		cmd.Dir = dir
		output, err := runInPTY(t, cmd)
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("expected exit error, got %v\nOutput:\n%s", err, output)
		}
		if exitErr.ExitCode() != cli.ExitUsage {
			t.Errorf("exit code = %d, want %d", exitErr.ExitCode(), cli.ExitUsage)
		}
		if !strings.Contains(output, "conflicting options --public-id, --omit-public-id") {
			t.Errorf("conflict message missing from output:\n%s", output)
		}
	})

	t.Run("fatal diagnostic exits with failure code", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.xml")
		if err := os.WriteFile(broken, []byte("<a><b></a>"), 0o644); err != nil {
			t.Fatalf("failed to write document: %v", err)
		}
		cmd := exec.Command(binary, "-q", broken)
		cmd.Dir = dir
		output, err := runInPTY(t, cmd)
		exitErr, ok := err.(*exec.ExitError)
		if !ok || exitErr.ExitCode() != cli.ExitFailure {
			t.Fatalf("expected exit code %d, got %v\nOutput:\n%s", cli.ExitFailure, err, output)
		}
		if !strings.Contains(output, "severity='fatal'") {
			t.Errorf("fatal diagnostic missing from report:\n%s", output)
		}
	})

	t.Run("version", func(t *testing.T) {
		cmd := exec.Command(binary, "version")
		output, err := runInPTY(t, cmd)
		if err != nil {
			t.Fatalf("version failed: %v", err)
		}
		if !strings.Contains(output, "doctype version dev") {
			t.Errorf("unexpected version output:\n%s", output)
		}
	})
}
