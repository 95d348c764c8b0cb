// Package render is the human-readable side of the presentation layer.
// The JSON side in cmd emits the same structs, so both carry identical
// field values.
package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"softloop/internal/domain"
)

// Snapshot writes the status view: header fields, phase table,
// progress, and git context.
func Snapshot(w io.Writer, snap domain.PlanSnapshot, branch string, changes []domain.WorkingChange) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s v%s", snap.Project, snap.Version)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Status:"), snap.Status)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Branch:"), snap.Branch)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Updated:"), snap.LastUpdated)
	fmt.Fprintf(w, "%s Phase %d - %s\n\n", labelStyle.Render("Current:"), snap.CurrentPhase.ID, snap.CurrentPhase.Name)

	if len(snap.Phases) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.AppendHeader(table.Row{"Phase", "Name", "State", "Tasks"})
		for _, p := range snap.Phases {
			tw.AppendRow(table.Row{p.ID, p.Name, p.State, fmt.Sprintf("%d/%d", p.TasksComplete, p.TasksTotal)})
		}
		tw.Render()
	}

	fmt.Fprintf(w, "\nProgress: %d/%d tasks (%d%%)\n",
		snap.Stats.CompletedTasks, snap.Stats.TotalTasks, snap.Stats.ProgressPercent)

	if branch != "" {
		fmt.Fprintf(w, "Git: %s, %d uncommitted change(s)\n", branch, len(changes))
		if branch != snap.Branch {
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("warning: plan expects branch %s, checked out %s", snap.Branch, branch)))
		}
	} else {
		fmt.Fprintln(w, dimStyle.Render("Git: unavailable"))
	}
}

// Checkpoint writes the verification matrix and verdict.
func Checkpoint(w io.Writer, r domain.CheckpointResult) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Checkpoint - Phase %d - %s", r.Phase.ID, r.Phase.Name)))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Task", "Description", "Status", "Confidence", "Reason"})
	for _, e := range r.Entries {
		tw.AppendRow(table.Row{e.TaskID, e.Description, e.Status, e.Confidence, e.Reason})
	}
	tw.Render()

	if r.Build.Attempted() {
		line := fmt.Sprintf("Build: %s %s", r.Build.Command, r.Build.State)
		if r.Build.Passed() {
			fmt.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, failStyle.Render(line))
			if r.Build.Detail != "" {
				fmt.Fprintln(w, dimStyle.Render(r.Build.Detail))
			}
		}
	} else {
		fmt.Fprintln(w, dimStyle.Render("Build: skipped"))
	}

	verdict := failStyle.Render("FAILED")
	if r.Passed {
		verdict = passStyle.Render("PASSED")
	}
	fmt.Fprintf(w, "%s (%d%% confidence)\n%s\n", verdict, r.OverallConfidence, r.Summary)
}

// Session writes one session entry, or a placeholder when the journal
// has none.
func Session(w io.Writer, s *domain.SessionInfo) {
	if s == nil {
		fmt.Fprintln(w, dimStyle.Render("no sessions recorded"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Session %d - %s", s.Number, s.Date)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Agent:"), s.Agent)
	if s.Handoff != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Handoff:"), s.Handoff)
	}
}
