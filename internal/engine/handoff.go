package engine

import (
	"context"

	"softloop/internal/domain"
	"softloop/internal/journal"
)

// HandoffOptions are the fields of one session handoff entry.
type HandoffOptions struct {
	Agent     string
	Summary   string
	Completed []string
	NextSteps []string
	Blockers  []string
	Note      string
}

// Handoff appends a session block to the journal and returns the
// session it recorded. The session number continues from the last
// recorded session, starting at 1 for an empty journal.
func (e Engine) Handoff(ctx context.Context, opts HandoffOptions) (domain.SessionInfo, error) {
	last, err := e.LastSession(ctx)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	number := 1
	if last != nil {
		number = last.Number + 1
	}

	agent := opts.Agent
	if agent == "" {
		agent = e.Config.Agent.Name
	}
	if agent == "" {
		agent = "Unknown"
	}

	info := domain.SessionInfo{
		Date:    e.now().Format("2006-01-02"),
		Number:  number,
		Agent:   agent,
		Handoff: opts.Note,
	}
	block := journal.SessionBlock{
		Date:      info.Date,
		Number:    number,
		Agent:     agent,
		Summary:   opts.Summary,
		Completed: opts.Completed,
		NextSteps: opts.NextSteps,
		Blockers:  opts.Blockers,
		Note:      opts.Note,
	}
	if err := e.Journal.AppendSession(block); err != nil {
		return domain.SessionInfo{}, err
	}
	return info, nil
}
