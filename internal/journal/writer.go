// Package journal appends formatted markdown blocks to the session
// journal. The journal is append-only; nothing here ever rewrites it.
package journal

import (
	"fmt"
	"os"
	"strings"

	"softloop/internal/domain"
)

type Writer struct {
	Path string
}

// SessionBlock is the parameter set for one session entry.
type SessionBlock struct {
	Date      string
	Number    int
	Agent     string
	Summary   string
	Completed []string
	NextSteps []string
	Blockers  []string
	Note      string
}

// AppendSession writes a session block. The block is generated so that
// the engine's session reader parses it back verbatim.
func (w Writer) AppendSession(b SessionBlock) error {
	return w.append(renderSession(b))
}

// AppendCheckpoint writes a checkpoint block. Its header deliberately
// does not match the session header grammar, so checkpoints never shift
// which session counts as the most recent one.
func (w Writer) AppendCheckpoint(r domain.CheckpointResult) error {
	return w.append(renderCheckpoint(r))
}

func (w Writer) append(block string) error {
	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", w.Path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("append journal %s: %w", w.Path, err)
	}
	return nil
}

func renderSession(b SessionBlock) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n---\n\n## Session Log: %s (Session %d)\n\n", b.Date, b.Number)
	fmt.Fprintf(&sb, "**Agent:** %s\n", b.Agent)
	if b.Summary != "" {
		fmt.Fprintf(&sb, "\n### Summary\n%s\n", b.Summary)
	}
	writeList(&sb, "Completed", b.Completed)
	writeList(&sb, "Next Steps", b.NextSteps)
	writeList(&sb, "Blockers", b.Blockers)
	if b.Note != "" {
		fmt.Fprintf(&sb, "\n*To the next Agent: %s*\n", b.Note)
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n### %s\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}

func renderCheckpoint(r domain.CheckpointResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n---\n\n## Checkpoint: %s (Phase %d - %s)\n\n", r.Timestamp, r.Phase.ID, r.Phase.Name)
	verdict := "FAILED"
	if r.Passed {
		verdict = "PASSED"
	}
	fmt.Fprintf(&sb, "**Verdict:** %s (%d%% confidence)\n", verdict, r.OverallConfidence)
	if r.Build.Attempted() {
		fmt.Fprintf(&sb, "**Build:** %s %s\n", r.Build.Command, r.Build.State)
	} else {
		fmt.Fprintf(&sb, "**Build:** skipped\n")
	}
	fmt.Fprintf(&sb, "\n| Task | Status | Confidence | Notes |\n")
	fmt.Fprintf(&sb, "|------|--------|------------|-------|\n")
	for _, e := range r.Entries {
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", e.TaskID, e.Status, e.Confidence, e.Reason)
	}
	fmt.Fprintf(&sb, "\n%s\n", r.Summary)
	return sb.String()
}
