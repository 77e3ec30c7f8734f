package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRunSummarizeCmd(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	t.Run("runs the command after --", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "docs.md")
		if err := os.WriteFile(input, []byte("crawled text\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		outDir := filepath.Join(dir, "out")

		var out bytes.Buffer
		cmd := NewSummarizeCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{
			"-c", emptyConfigFile(t),
			"-i", input,
			"-n", "docs",
			"-o", outDir,
			"--",
			"/bin/sh", "-c", `cat "$1" > "$2"`, "sh", "{input}", "{output_dir}/{target}",
		})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		summary, err := os.ReadFile(filepath.Join(outDir, "docs.txt"))
		if err != nil {
			t.Fatalf("expected summary file: %v", err)
		}
		if string(summary) != "crawled text\n" {
			t.Errorf("unexpected summary %q", summary)
		}
		if !strings.Contains(out.String(), "docs.txt") {
			t.Errorf("expected summary path in output, got %q", out.String())
		}
	})

	t.Run("uses the configured command", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "docs.md")
		if err := os.WriteFile(input, []byte("text\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		outDir := filepath.Join(dir, "summaries")
		cfgPath := filepath.Join(dir, ".mdcrawl")
		cfgYAML := "summarizer:\n" +
			"  command: [\"/bin/sh\", \"-c\", \"echo summary > \\\"$1\\\"\", \"sh\", \"{output_dir}/{target}\"]\n" +
			"  outputDir: " + outDir + "\n" +
			"  timeout: 1m\n"
		if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewSummarizeCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"-c", cfgPath, "-i", input, "-n", "guide"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(outDir, "guide.txt")); err != nil {
			t.Errorf("expected summary in configured directory: %v", err)
		}
	})

	t.Run("no command configured", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "docs.md")
		if err := os.WriteFile(input, []byte("text\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewSummarizeCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"-c", emptyConfigFile(t), "-i", input, "-n", "docs", "-o", dir})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error without a command")
		}
	})
}
