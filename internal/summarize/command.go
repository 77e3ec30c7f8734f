package summarize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/mdcrawl/internal/output"
)

// Placeholders expanded in every argument of a CommandSummarizer.
const (
	PlaceholderInput     = "{input}"
	PlaceholderOutputDir = "{output_dir}"
	PlaceholderTarget    = "{target}"
)

// ErrNoCommand is returned by NewCommandSummarizer for an empty argv.
var ErrNoCommand = errors.New("summarizer command is empty")

// CommandError reports a summarizer process that failed.
type CommandError struct {
	// Command is argv[0].
	Command string

	// ExitCode is the process exit code, or -1 when it did not run.
	ExitCode int

	// Stderr is the tail of the process error output.
	Stderr string

	Err error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("summarizer %s failed (exit %d): %v", e.Command, e.ExitCode, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

const (
	// maxStderr is how much of the process error output is kept.
	maxStderr = 2048

	// waitDelay bounds the wait for output pipes after the process is
	// killed, in case it left children holding them.
	waitDelay = time.Second
)

// CommandSummarizer runs an external agent process.
type CommandSummarizer struct {
	argv    []string
	env     []string
	timeout time.Duration
	logger  *slog.Logger
}

// CommandOption configures a CommandSummarizer.
type CommandOption func(*CommandSummarizer)

// WithEnv adds KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) CommandOption {
	return func(s *CommandSummarizer) {
		s.env = append(s.env, env...)
	}
}

// WithTimeout bounds one run. Zero means no bound.
func WithTimeout(d time.Duration) CommandOption {
	return func(s *CommandSummarizer) {
		s.timeout = d
	}
}

// WithLogger sets the logger. The agent's stdout is logged at debug level.
func WithLogger(logger *slog.Logger) CommandOption {
	return func(s *CommandSummarizer) {
		s.logger = logger
	}
}

// NewCommandSummarizer creates a CommandSummarizer for argv.
func NewCommandSummarizer(argv []string, opts ...CommandOption) (*CommandSummarizer, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, ErrNoCommand
	}
	s := &CommandSummarizer{argv: slices.Clone(argv)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Args returns argv with the placeholders of req expanded.
func (s *CommandSummarizer) Args(req Request) []string {
	r := strings.NewReplacer(
		PlaceholderInput, req.InputPath,
		PlaceholderOutputDir, req.OutputDir,
		PlaceholderTarget, TargetFilename(req.Name),
	)
	args := make([]string, len(s.argv))
	for i, a := range s.argv {
		args[i] = r.Replace(a)
	}
	return args
}

// Summarize implements Summarizer. It creates OutputDir, runs the command
// and then requires that the target file was written and that no other
// file in OutputDir changed.
func (s *CommandSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := output.Prepare(req.OutputDir); err != nil {
		return "", err
	}

	before, err := snapshot(req.OutputDir)
	if err != nil {
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := s.Args(req)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // command comes from user configuration
	cmd.Env = append(os.Environ(), s.env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	s.logger.Info("running summarizer", "command", args[0], "input", req.InputPath, "target", req.Target())
	start := time.Now()
	runErr := cmd.Run()
	if stdout.Len() > 0 {
		s.logger.Debug("summarizer output", "stdout", stdout.String())
	}
	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			runErr = fmt.Errorf("%w: %w", ctx.Err(), runErr)
		}
		return "", &CommandError{
			Command:  args[0],
			ExitCode: exitCode,
			Stderr:   tail(stderr.String(), maxStderr),
			Err:      runErr,
		}
	}

	target, err := verifyOutput(req, before)
	if err != nil {
		return "", err
	}
	s.logger.Info("summary written", "path", target, "elapsed", time.Since(start).Round(time.Millisecond))
	return target, nil
}

type fileState struct {
	size    int64
	modTime time.Time
}

// snapshot records the regular files directly inside dir.
func snapshot(dir string) (map[string]fileState, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	files := make(map[string]fileState, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", filepath.Join(dir, e.Name()), err)
		}
		files[e.Name()] = fileState{size: info.Size(), modTime: info.ModTime()}
	}
	return files, nil
}

// verifyOutput compares OutputDir against before.
func verifyOutput(req Request, before map[string]fileState) (string, error) {
	after, err := snapshot(req.OutputDir)
	if err != nil {
		return "", err
	}

	var changed []string
	for name, st := range after {
		if prev, ok := before[name]; !ok || prev != st {
			changed = append(changed, name)
		}
	}
	slices.Sort(changed)

	target := TargetFilename(req.Name)
	if !slices.Contains(changed, target) {
		if len(changed) > 0 {
			return "", fmt.Errorf("%w: expected %s, got %s", ErrNoOutput, target, strings.Join(changed, ", "))
		}
		return "", fmt.Errorf("%w: expected %s", ErrNoOutput, req.Target())
	}
	if len(changed) > 1 {
		return "", fmt.Errorf("%w: %s", ErrMultipleOutputs, strings.Join(changed, ", "))
	}
	return req.Target(), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
