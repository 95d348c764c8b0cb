package engine

import (
	"context"
	"math"
	"time"

	"softloop/internal/config"
	"softloop/internal/domain"
	"softloop/internal/journal"
	"softloop/internal/repo"
)

// VersionControl supplies branch, commit, and working-tree facts. All
// three are best-effort; the engine degrades to empty results when the
// source is unavailable.
type VersionControl interface {
	Branch(ctx context.Context) (string, error)
	RecentCommits(ctx context.Context, n int) ([]domain.Commit, error)
	WorkingChanges(ctx context.Context) ([]domain.WorkingChange, error)
}

// BuildProber runs (or skips) one build and reports the outcome.
type BuildProber interface {
	Run(ctx context.Context) domain.BuildResult
}

type Engine struct {
	Repo    repo.Repo
	Git     VersionControl
	Probe   BuildProber
	Journal journal.Writer
	Config  *config.Config
	Now     func() time.Time
}

func New(r repo.Repo, cfg *config.Config) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		Repo:    r,
		Journal: journal.Writer{Path: r.JournalPath()},
		Config:  cfg,
		Now:     time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Snapshot reads the plan and composes the aggregate status view. The
// only hard failure is a missing plan document; every malformed field
// or line resolves to a default or is skipped.
func (e Engine) Snapshot(ctx context.Context) (domain.PlanSnapshot, error) {
	doc, err := e.Repo.ReadPlan()
	if err != nil {
		return domain.PlanSnapshot{}, err
	}

	snap := domain.PlanSnapshot{
		Project:     extractField(doc, "Project", "Unknown Project"),
		Version:     extractField(doc, "Version", "1.0"),
		Status:      classifyPlanState(extractField(doc, "Status", "")),
		Branch:      extractField(doc, "Branch", "main"),
		LastUpdated: extractField(doc, "Last Updated", e.now().Format("2006-01-02")),
	}

	snap.Phases = readPhases(doc)
	tasks := readTasks(doc)
	for _, t := range tasks {
		if t.Completed {
			snap.CompletedTasks = append(snap.CompletedTasks, t)
		} else {
			snap.PendingTasks = append(snap.PendingTasks, t)
		}
	}
	snap.CurrentPhase = currentPhase(snap.Phases)
	snap.Stats = computeStats(snap.Phases, tasks)
	return snap, nil
}

// currentPhase resolves a defined current phase for every input: the
// first active phase, else the first planned one, else the last phase
// forced complete, else a synthetic planning phase.
func currentPhase(phases []domain.PhaseSummary) domain.PhaseSummary {
	for _, p := range phases {
		if p.State == domain.PhaseActive {
			return p
		}
	}
	for _, p := range phases {
		if p.State == domain.PhasePlanned {
			return p
		}
	}
	if len(phases) > 0 {
		last := phases[len(phases)-1]
		last.State = domain.PhaseComplete
		return last
	}
	return domain.PhaseSummary{ID: 0, Name: "Planning", State: domain.PhaseActive}
}

func computeStats(phases []domain.PhaseSummary, tasks []domain.Task) domain.Stats {
	s := domain.Stats{TotalPhases: len(phases), TotalTasks: len(tasks)}
	for _, p := range phases {
		if p.State == domain.PhaseComplete {
			s.CompletedPhases++
		}
	}
	for _, t := range tasks {
		if t.Completed {
			s.CompletedTasks++
		}
	}
	if s.TotalTasks > 0 {
		s.ProgressPercent = int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
	}
	return s
}

// GitInfo returns the checked-out branch and working-tree changes,
// degrading to empty values when the version-control source is absent
// or fails.
func (e Engine) GitInfo(ctx context.Context) (string, []domain.WorkingChange) {
	if e.Git == nil {
		return "", nil
	}
	branch, err := e.Git.Branch(ctx)
	if err != nil {
		branch = ""
	}
	changes, err := e.Git.WorkingChanges(ctx)
	if err != nil {
		changes = nil
	}
	return branch, changes
}
