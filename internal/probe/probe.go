// Package probe detects and runs one build in the workspace root and
// reports the outcome as a tagged result. "No build mechanism found"
// and "build skipped" are the same state; only a real run can pass or
// fail.
package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"softloop/internal/domain"
)

type Prober struct {
	Dir     string
	Command string // overrides detection when set
	Timeout time.Duration
}

// Detect returns the build command for whichever build mechanism exists
// in dir, checked in a fixed order.
func Detect(dir string) (string, bool) {
	checks := []struct {
		file    string
		command string
	}{
		{"go.mod", "go build ./..."},
		{"Cargo.toml", "cargo build"},
		{"package.json", "npm run build"},
		{"Makefile", "make"},
	}
	for _, c := range checks {
		if _, err := os.Stat(filepath.Join(dir, c.file)); err == nil {
			return c.command, true
		}
	}
	return "", false
}

// Run executes the configured or detected build command once and maps
// the outcome onto a BuildResult. No detection means skipped.
func (p Prober) Run(ctx context.Context) domain.BuildResult {
	command := p.Command
	if command == "" {
		var ok bool
		command, ok = Detect(p.Dir)
		if !ok {
			return domain.BuildResult{State: domain.BuildSkipped}
		}
	}
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return domain.BuildResult{State: domain.BuildSkipped}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := tail(string(out), 10)
		if ctx.Err() == context.DeadlineExceeded {
			detail = "build timed out after " + timeout.String()
		}
		return domain.BuildResult{State: domain.BuildFailed, Command: command, Detail: detail}
	}
	return domain.BuildResult{State: domain.BuildPassed, Command: command}
}

// tail keeps the last n lines of combined output.
func tail(out string, n int) string {
	out = strings.TrimRight(out, "\n")
	lines := strings.Split(out, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
