// Package git is the version-control source: branch, recent commits,
// and working-tree changes, all read by shelling out to git. Callers
// treat every operation as best-effort.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"softloop/internal/domain"
)

type Source struct {
	Dir string
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	output := strings.TrimRight(string(out), " \t\r\n")
	if err != nil {
		return output, fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), output, err)
	}
	return output, nil
}

// Branch returns the name of the checked-out branch.
func (s Source) Branch(ctx context.Context) (string, error) {
	return run(ctx, s.Dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// RecentCommits returns up to n commits, newest first.
func (s Source) RecentCommits(ctx context.Context, n int) ([]domain.Commit, error) {
	out, err := run(ctx, s.Dir, "log", fmt.Sprintf("-n%d", n), "--format=%h|%s")
	if err != nil {
		return nil, err
	}
	return parseCommits(out), nil
}

func parseCommits(out string) []domain.Commit {
	if out == "" {
		return nil
	}
	var commits []domain.Commit
	for _, line := range strings.Split(out, "\n") {
		hash, msg, found := strings.Cut(line, "|")
		if !found {
			continue
		}
		commits = append(commits, domain.Commit{
			Hash:    strings.TrimSpace(hash),
			Message: strings.TrimSpace(msg),
		})
	}
	return commits
}

// WorkingChanges returns the uncommitted changes in the working tree.
func (s Source) WorkingChanges(ctx context.Context) ([]domain.WorkingChange, error) {
	out, err := run(ctx, s.Dir, "status", "--porcelain", "-uall")
	if err != nil {
		return nil, err
	}
	return parseChanges(out), nil
}

func parseChanges(out string) []domain.WorkingChange {
	if out == "" {
		return nil
	}
	var changes []domain.WorkingChange
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		// rename lines read "old -> new"; keep the new path
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		changes = append(changes, domain.WorkingChange{
			Path: path,
			Kind: classifyStatus(line[0], line[1]),
		})
	}
	return changes
}

func classifyStatus(index, worktree byte) string {
	if index == '?' || worktree == '?' {
		return "untracked"
	}
	code := index
	if code == ' ' {
		code = worktree
	}
	switch code {
	case 'A':
		return "added"
	case 'D':
		return "deleted"
	case 'R':
		return "renamed"
	default:
		return "modified"
	}
}
