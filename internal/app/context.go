package app

import (
	"time"

	"softloop/internal/config"
	"softloop/internal/engine"
	"softloop/internal/git"
	"softloop/internal/probe"
	"softloop/internal/repo"
)

// Context is one resolved workspace: its config plus a fully wired
// engine.
type Context struct {
	Workspace string
	Config    *config.Config
	Engine    engine.Engine
}

// Resolve loads the optional workspace config and assembles the engine
// with its collaborators. A missing softloop.yml means defaults, not an
// error; the plan document is only checked when an operation reads it.
func Resolve(workspace string) (Context, error) {
	if workspace == "" {
		workspace = "."
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return Context{}, err
	}
	r := repo.Repo{
		Workspace:   workspace,
		PlanFile:    cfg.Project.Plan,
		JournalFile: cfg.Project.Journal,
	}
	e := engine.New(r, cfg)
	e.Git = git.Source{Dir: workspace}
	e.Probe = probe.Prober{
		Dir:     workspace,
		Command: cfg.Build.Command,
		Timeout: time.Duration(cfg.Build.TimeoutSeconds) * time.Second,
	}
	return Context{Workspace: workspace, Config: cfg, Engine: e}, nil
}
