package domain

// PlanState is the lifecycle state of the plan as a whole.
type PlanState string

const (
	PlanActive   PlanState = "active"
	PlanPaused   PlanState = "paused"
	PlanComplete PlanState = "complete"
)

// PhaseState is the lifecycle state of a single phase.
type PhaseState string

const (
	PhaseComplete PhaseState = "complete"
	PhaseActive   PhaseState = "active"
	PhasePlanned  PhaseState = "planned"
)

// VerifyStatus classifies a task inside a verification matrix.
type VerifyStatus string

const (
	VerifyComplete   VerifyStatus = "complete"
	VerifyPartial    VerifyStatus = "partial"
	VerifyNotStarted VerifyStatus = "not_started"
)

// BuildState distinguishes "probe never ran" from a real outcome.
type BuildState string

const (
	BuildSkipped BuildState = "skipped"
	BuildPassed  BuildState = "passed"
	BuildFailed  BuildState = "failed"
)

type PhaseSummary struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	State         PhaseState `json:"state" enum:"complete,active,planned"`
	TasksComplete int        `json:"tasks_complete"`
	TasksTotal    int        `json:"tasks_total"`
}

type Task struct {
	ID          string `json:"id"`
	Phase       int    `json:"phase"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CommitHash  string `json:"commit_hash,omitempty"`
}

type SessionInfo struct {
	Date    string `json:"date" format:"date"`
	Number  int    `json:"number"`
	Agent   string `json:"agent"`
	Handoff string `json:"handoff,omitempty"`
}

type Stats struct {
	TotalPhases     int `json:"total_phases"`
	CompletedPhases int `json:"completed_phases"`
	TotalTasks      int `json:"total_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	ProgressPercent int `json:"progress_percent"`
}

// PlanSnapshot is the aggregate view of one plan read. It is built fresh
// on every invocation and never mutated afterwards.
type PlanSnapshot struct {
	Project        string         `json:"project"`
	Version        string         `json:"version"`
	Status         PlanState      `json:"status" enum:"active,paused,complete"`
	Branch         string         `json:"branch"`
	LastUpdated    string         `json:"last_updated" format:"date"`
	CurrentPhase   PhaseSummary   `json:"current_phase"`
	Phases         []PhaseSummary `json:"phases"`
	PendingTasks   []Task         `json:"pending_tasks"`
	CompletedTasks []Task         `json:"completed_tasks"`
	Stats          Stats          `json:"stats"`
}

type Commit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

type WorkingChange struct {
	Path string `json:"path"`
	Kind string `json:"kind" enum:"modified,added,deleted,renamed,untracked"`
}

type BuildResult struct {
	State   BuildState `json:"state" enum:"skipped,passed,failed"`
	Command string     `json:"command,omitempty"`
	Detail  string     `json:"detail,omitempty"`
}

// Attempted reports whether the probe actually ran a build.
func (b BuildResult) Attempted() bool { return b.State != BuildSkipped }

func (b BuildResult) Passed() bool { return b.State == BuildPassed }

type VerificationEntry struct {
	TaskID      string       `json:"task_id"`
	Description string       `json:"description"`
	CommitHash  string       `json:"commit_hash,omitempty"`
	Status      VerifyStatus `json:"status" enum:"complete,partial,not_started"`
	Confidence  int          `json:"confidence"`
	Reason      string       `json:"reason"`
}

type CheckpointResult struct {
	ID                string              `json:"id"`
	Timestamp         string              `json:"timestamp" format:"date-time"`
	Phase             PhaseSummary        `json:"phase"`
	Entries           []VerificationEntry `json:"entries"`
	Build             BuildResult         `json:"build"`
	OverallConfidence int                 `json:"overall_confidence"`
	Passed            bool                `json:"passed"`
	Summary           string              `json:"summary"`
}
