// Package softloopsdk is the programmatic facade over a softloop
// workspace: the same engine the CLI drives, without the CLI.
package softloopsdk

import (
	"context"

	"softloop/internal/app"
	"softloop/internal/domain"
	"softloop/internal/engine"
)

type Client struct {
	workspace string
	engine    engine.Engine
}

// New resolves a workspace into a client. The plan document is only
// required once an operation reads it.
func New(workspace string) (*Client, error) {
	ac, err := app.Resolve(workspace)
	if err != nil {
		return nil, err
	}
	return &Client{workspace: workspace, engine: ac.Engine}, nil
}

// Workspace returns the resolved workspace directory.
func (c *Client) Workspace() string { return c.workspace }

// Status returns the current plan snapshot.
func (c *Client) Status(ctx context.Context) (domain.PlanSnapshot, error) {
	return c.engine.Snapshot(ctx)
}

// Checkpoint verifies a phase (0 means the current one) without
// touching the journal or running a build.
func (c *Client) Checkpoint(ctx context.Context, phase int) (domain.CheckpointResult, error) {
	return c.engine.Checkpoint(ctx, engine.CheckpointOptions{Phase: phase, SkipBuild: true})
}

// CheckpointAndRecord verifies a phase with the build probe and appends
// the result to the journal.
func (c *Client) CheckpointAndRecord(ctx context.Context, phase int) (domain.CheckpointResult, error) {
	return c.engine.Checkpoint(ctx, engine.CheckpointOptions{Phase: phase, Record: true})
}

// LastSession returns the most recent journal session, or nil.
func (c *Client) LastSession(ctx context.Context) (*domain.SessionInfo, error) {
	return c.engine.LastSession(ctx)
}

// Handoff records a session handoff and returns it.
func (c *Client) Handoff(ctx context.Context, opts engine.HandoffOptions) (domain.SessionInfo, error) {
	return c.engine.Handoff(ctx, opts)
}
