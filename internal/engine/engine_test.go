package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"softloop/internal/config"
	"softloop/internal/domain"
	"softloop/internal/engine"
	"softloop/internal/repo"
	"softloop/internal/scaffold"
)

const fixturePlan = `# Demo - Project Plan

**Project:** Demo
**Version:** 2.1
**Status:** Active - Phase 2
**Branch:** feature/core
**Last Updated:** 2026-01-10

## Phase Status

| Phase | Status |
|-------|--------|
| Phase 1 - Foundation | ✅ Complete |
| Phase 2 - Features | 🔄 In Progress |
| Phase 3 - Polish | 📋 Planned |

## Tasks

- [x] 1.1: Set up module (commit: a1b2c3d)
- [x] 1.2: Wire config
- [ ] 2.1: Build parser
- [x] 2.2: Implement scorer
- [ ] 3.1: Docs pass
`

type testEnv struct {
	Engine engine.Engine
	Dir    string
	Ctx    context.Context
}

func newTestEnv(t *testing.T, plan, journal string) testEnv {
	t.Helper()
	dir := t.TempDir()
	if plan != "" {
		if err := os.WriteFile(filepath.Join(dir, "PLAN.md"), []byte(plan), 0o644); err != nil {
			t.Fatalf("write plan: %v", err)
		}
	}
	if journal != "" {
		if err := os.WriteFile(filepath.Join(dir, "JOURNAL.md"), []byte(journal), 0o644); err != nil {
			t.Fatalf("write journal: %v", err)
		}
	}
	eng := engine.New(repo.New(dir), config.Default())
	eng.Now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Dir: dir, Ctx: context.Background()}
}

type stubGit struct {
	branch  string
	commits []domain.Commit
}

func (s stubGit) Branch(ctx context.Context) (string, error) { return s.branch, nil }
func (s stubGit) RecentCommits(ctx context.Context, n int) ([]domain.Commit, error) {
	return s.commits, nil
}
func (s stubGit) WorkingChanges(ctx context.Context) ([]domain.WorkingChange, error) {
	return nil, nil
}

type stubProbe struct {
	result domain.BuildResult
}

func (s stubProbe) Run(ctx context.Context) domain.BuildResult { return s.result }

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	snap, err := env.Engine.Snapshot(env.Ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Project != "Demo" || snap.Version != "2.1" {
		t.Fatalf("header fields: %+v", snap)
	}
	if snap.Status != domain.PlanActive || snap.Branch != "feature/core" || snap.LastUpdated != "2026-01-10" {
		t.Fatalf("header fields: %+v", snap)
	}
	if len(snap.Phases) != 3 {
		t.Fatalf("phases: %+v", snap.Phases)
	}
	if snap.Phases[0].TasksComplete != 2 || snap.Phases[0].TasksTotal != 2 {
		t.Fatalf("phase 1 counts: %+v", snap.Phases[0])
	}
	if snap.Phases[1].TasksComplete != 1 || snap.Phases[1].TasksTotal != 2 {
		t.Fatalf("phase 2 counts: %+v", snap.Phases[1])
	}
	if snap.CurrentPhase.ID != 2 || snap.CurrentPhase.State != domain.PhaseActive {
		t.Fatalf("current phase: %+v", snap.CurrentPhase)
	}
	s := snap.Stats
	if s.TotalPhases != 3 || s.CompletedPhases != 1 || s.TotalTasks != 5 || s.CompletedTasks != 3 || s.ProgressPercent != 60 {
		t.Fatalf("stats: %+v", s)
	}
	if len(snap.PendingTasks) != 2 || snap.PendingTasks[0].ID != "2.1" || snap.PendingTasks[1].ID != "3.1" {
		t.Fatalf("pending order: %+v", snap.PendingTasks)
	}
	if len(snap.CompletedTasks) != 3 || snap.CompletedTasks[0].CommitHash != "a1b2c3d" {
		t.Fatalf("completed tasks: %+v", snap.CompletedTasks)
	}
	if snap.CompletedTasks[0].Description != "Set up module" {
		t.Fatalf("annotation not stripped: %q", snap.CompletedTasks[0].Description)
	}
}

func TestSnapshotMissingPlan(t *testing.T) {
	env := newTestEnv(t, "", "")
	_, err := env.Engine.Snapshot(env.Ctx)
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotFieldDefaults(t *testing.T) {
	env := newTestEnv(t, "**Status:** Active - Phase 1\n", "")
	snap, err := env.Engine.Snapshot(env.Ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Status != domain.PlanActive {
		t.Fatalf("status: %s", snap.Status)
	}
	if snap.Branch != "main" {
		t.Fatalf("branch default: %q", snap.Branch)
	}
	if snap.Project != "Unknown Project" || snap.Version != "1.0" {
		t.Fatalf("defaults: %+v", snap)
	}
	// injected clock supplies the missing last-updated date
	if snap.LastUpdated != "2026-01-15" {
		t.Fatalf("last updated default: %q", snap.LastUpdated)
	}
	if snap.Stats.ProgressPercent != 0 {
		t.Fatalf("zero tasks should be 0%%: %+v", snap.Stats)
	}
}

func TestCurrentPhaseFallbacks(t *testing.T) {
	// all phases complete: last one wins, forced complete
	plan := "| Phase 1 - A | ✅ Done |\n| Phase 2 - B | ✅ Done |\n"
	env := newTestEnv(t, plan, "")
	snap, err := env.Engine.Snapshot(env.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.CurrentPhase.ID != 2 || snap.CurrentPhase.State != domain.PhaseComplete {
		t.Fatalf("fallback to last: %+v", snap.CurrentPhase)
	}

	// no phases at all: synthetic planning phase
	env = newTestEnv(t, "**Project:** Empty\n", "")
	snap, err = env.Engine.Snapshot(env.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.PhaseSummary{ID: 0, Name: "Planning", State: domain.PhaseActive}
	if snap.CurrentPhase != want {
		t.Fatalf("synthetic phase: %+v", snap.CurrentPhase)
	}

	// planned beats the forced-complete fallback
	plan = "| Phase 1 - A | ✅ Done |\n| Phase 2 - B | 📋 Planned |\n"
	env = newTestEnv(t, plan, "")
	snap, _ = env.Engine.Snapshot(env.Ctx)
	if snap.CurrentPhase.ID != 2 || snap.CurrentPhase.State != domain.PhasePlanned {
		t.Fatalf("planned fallback: %+v", snap.CurrentPhase)
	}
}

func TestLastSessionTextualOrderWins(t *testing.T) {
	journal := `# Journal

## Session Log: 2026-01-10 (Session 3)

**Agent:** earlier

## Session Log: 2026-01-05

**Agent:** claude

*To the next Agent: finish the parser,
then run a checkpoint*
`
	env := newTestEnv(t, fixturePlan, journal)
	s, err := env.Engine.LastSession(env.Ctx)
	if err != nil {
		t.Fatalf("last session: %v", err)
	}
	if s == nil {
		t.Fatal("expected a session")
	}
	// last header by scan order, not the newer date
	if s.Date != "2026-01-05" {
		t.Fatalf("date: %q", s.Date)
	}
	if s.Number != 1 {
		t.Fatalf("number should default to 1: %d", s.Number)
	}
	if s.Agent != "claude" {
		t.Fatalf("agent: %q", s.Agent)
	}
	if s.Handoff != "finish the parser,\nthen run a checkpoint" {
		t.Fatalf("handoff: %q", s.Handoff)
	}
}

func TestLastSessionAbsent(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	s, err := env.Engine.LastSession(env.Ctx)
	if err != nil || s != nil {
		t.Fatalf("missing journal: %v %v", s, err)
	}

	env = newTestEnv(t, fixturePlan, "# Journal\n\nno sessions yet\n")
	s, err = env.Engine.LastSession(env.Ctx)
	if err != nil || s != nil {
		t.Fatalf("no header: %v %v", s, err)
	}
}

func TestCheckpointPartialFromCommitMessage(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	env.Engine.Git = stubGit{commits: []domain.Commit{
		{Hash: "f00ba41", Message: "wip 2.1 parser groundwork"},
	}}
	res, err := env.Engine.Checkpoint(env.Ctx, engine.CheckpointOptions{SkipBuild: true})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if res.Phase.ID != 2 {
		t.Fatalf("target phase: %+v", res.Phase)
	}
	// pending first, then completed
	if len(res.Entries) != 2 || res.Entries[0].TaskID != "2.1" || res.Entries[1].TaskID != "2.2" {
		t.Fatalf("entries: %+v", res.Entries)
	}
	e := res.Entries[0]
	if e.Status != domain.VerifyPartial || e.Confidence != 50 || e.CommitHash != "f00ba41" {
		t.Fatalf("partial entry: %+v", e)
	}
	if e.Reason != engine.ReasonPartial {
		t.Fatalf("partial reason: %q", e.Reason)
	}
	if res.Entries[1].Status != domain.VerifyComplete || res.Entries[1].Confidence != 70 {
		t.Fatalf("complete-no-commit entry: %+v", res.Entries[1])
	}
	if res.Passed {
		t.Fatalf("expected failed verdict")
	}
	if res.OverallConfidence != 60 {
		t.Fatalf("overall: %d", res.OverallConfidence)
	}
	if res.Summary != "checkpoint failed: 1 of 2 task(s) not complete" {
		t.Fatalf("summary: %q", res.Summary)
	}
	if res.Build.Attempted() {
		t.Fatalf("build should be skipped: %+v", res.Build)
	}
}

func TestCheckpointPassed(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	env.Engine.Git = stubGit{commits: []domain.Commit{
		{Hash: "abc1234", Message: "1.2: wire config through the engine"},
	}}
	res, err := env.Engine.Checkpoint(env.Ctx, engine.CheckpointOptions{Phase: 1, SkipBuild: true})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if !res.Passed {
		t.Fatalf("expected pass: %+v", res)
	}
	// 1.1 carries its own hash (90), 1.2 matches the commit message (90)
	if res.OverallConfidence != 90 {
		t.Fatalf("overall: %d", res.OverallConfidence)
	}
	if res.Entries[1].CommitHash != "abc1234" {
		t.Fatalf("resolved hash: %+v", res.Entries[1])
	}
	if res.Summary != "checkpoint passed: 2 task(s) complete at 90% confidence" {
		t.Fatalf("summary: %q", res.Summary)
	}
	if res.ID == "" || res.Timestamp != "2026-01-15T00:00:00Z" {
		t.Fatalf("identity: %q %q", res.ID, res.Timestamp)
	}
}

func TestCheckpointEmptyPhaseVacuousPass(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	res, err := env.Engine.Checkpoint(env.Ctx, engine.CheckpointOptions{Phase: 9, SkipBuild: true})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if len(res.Entries) != 0 || res.OverallConfidence != 0 || !res.Passed {
		t.Fatalf("empty matrix: %+v", res)
	}
}

func TestCheckpointBuildFailureBlocksPass(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	env.Engine.Probe = stubProbe{result: domain.BuildResult{
		State:   domain.BuildFailed,
		Command: "go build ./...",
		Detail:  "exit status 1",
	}}
	res, err := env.Engine.Checkpoint(env.Ctx, engine.CheckpointOptions{Phase: 1})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if res.Passed {
		t.Fatalf("build failure must block the pass")
	}
	if res.Summary != "checkpoint failed: build did not pass" {
		t.Fatalf("summary: %q", res.Summary)
	}
}

func TestCheckpointRecordsJournal(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	_, err := env.Engine.Checkpoint(env.Ctx, engine.CheckpointOptions{Phase: 1, SkipBuild: true, Record: true})
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(env.Dir, "JOURNAL.md"))
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if !strings.Contains(string(data), "## Checkpoint: 2026-01-15T00:00:00Z (Phase 1 - Foundation)") {
		t.Fatalf("checkpoint block missing:\n%s", data)
	}
	// a checkpoint block must never read as a session
	s, err := env.Engine.LastSession(env.Ctx)
	if err != nil || s != nil {
		t.Fatalf("checkpoint leaked into sessions: %v %v", s, err)
	}
}

func TestHandoffRoundTrip(t *testing.T) {
	env := newTestEnv(t, fixturePlan, "")
	info, err := env.Engine.Handoff(env.Ctx, engine.HandoffOptions{
		Agent:     "claude",
		Summary:   "built the parser",
		Completed: []string{"2.1 parser skeleton"},
		NextSteps: []string{"2.2 scorer"},
		Note:      "scorer table is half done",
	})
	if err != nil {
		t.Fatalf("handoff: %v", err)
	}
	if info.Number != 1 || info.Date != "2026-01-15" {
		t.Fatalf("first session: %+v", info)
	}

	s, err := env.Engine.LastSession(env.Ctx)
	if err != nil || s == nil {
		t.Fatalf("read back: %v %v", s, err)
	}
	if s.Number != 1 || s.Agent != "claude" || s.Handoff != "scorer table is half done" {
		t.Fatalf("round trip: %+v", s)
	}

	// the next handoff continues the numbering
	info, err = env.Engine.Handoff(env.Ctx, engine.HandoffOptions{Agent: "claude", Summary: "more work"})
	if err != nil {
		t.Fatalf("second handoff: %v", err)
	}
	if info.Number != 2 {
		t.Fatalf("second session number: %d", info.Number)
	}
}

func TestScaffoldRoundTrip(t *testing.T) {
	env := newTestEnv(t, "", "")
	params := scaffold.Params{Project: "Fresh", FirstPhase: "Core", Agent: "claude", Date: "2026-01-15"}
	if err := scaffold.Ensure(env.Dir, params, false); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	snap, err := env.Engine.Snapshot(env.Ctx)
	if err != nil {
		t.Fatalf("snapshot of scaffold: %v", err)
	}
	if snap.Project != "Fresh" || snap.Status != domain.PlanActive {
		t.Fatalf("scaffolded plan: %+v", snap)
	}
	if snap.CurrentPhase.ID != 1 || snap.CurrentPhase.State != domain.PhaseActive || snap.CurrentPhase.Name != "Core" {
		t.Fatalf("scaffolded phase: %+v", snap.CurrentPhase)
	}
	if len(snap.PendingTasks) != 1 || snap.PendingTasks[0].ID != "1.1" {
		t.Fatalf("scaffolded tasks: %+v", snap.PendingTasks)
	}
	s, err := env.Engine.LastSession(env.Ctx)
	if err != nil || s == nil || s.Number != 1 || s.Agent != "claude" {
		t.Fatalf("scaffolded journal: %+v %v", s, err)
	}
}
