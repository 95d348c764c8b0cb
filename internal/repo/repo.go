package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Repo is the document source for a workspace: it knows where the plan
// and journal live and reads them as raw text. All parsing happens in
// the engine; Repo only answers "give me the document".
type Repo struct {
	Workspace   string
	PlanFile    string
	JournalFile string
}

var ErrNotFound = errors.New("not found")

// New returns a Repo with the default document names.
func New(workspace string) Repo {
	return Repo{Workspace: workspace, PlanFile: "PLAN.md", JournalFile: "JOURNAL.md"}
}

func (r Repo) dir() string {
	if r.Workspace == "" {
		return "."
	}
	return r.Workspace
}

// PlanPath returns the plan document path for the workspace.
func (r Repo) PlanPath() string {
	name := r.PlanFile
	if name == "" {
		name = "PLAN.md"
	}
	return filepath.Join(r.dir(), name)
}

// JournalPath returns the journal document path for the workspace.
func (r Repo) JournalPath() string {
	name := r.JournalFile
	if name == "" {
		name = "JOURNAL.md"
	}
	return filepath.Join(r.dir(), name)
}

// ReadPlan returns the raw plan text. A missing plan is the one hard
// failure in the system and surfaces as ErrNotFound.
func (r Repo) ReadPlan() (string, error) {
	path := r.PlanPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("plan %s: %w (run 'loop init' to scaffold one)", path, ErrNotFound)
		}
		return "", fmt.Errorf("read plan %s: %w", path, err)
	}
	return string(data), nil
}

// ReadJournal returns the raw journal text. A missing journal is not an
// error; callers get ErrNotFound and treat it as an empty history.
func (r Repo) ReadJournal() (string, error) {
	path := r.JournalPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("journal %s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("read journal %s: %w", path, err)
	}
	return string(data), nil
}
