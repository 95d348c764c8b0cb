package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"softloop/internal/domain"
	"softloop/internal/repo"
)

const sessionHeader = "## Session Log:"

// LastSession returns the most recent session entry in the journal, or
// nil when the journal is missing or has no session headers. "Most
// recent" means the last header by scan order, not by date comparison:
// an out-of-order journal yields its textually-last entry.
func (e Engine) LastSession(ctx context.Context) (*domain.SessionInfo, error) {
	doc, err := e.Repo.ReadJournal()
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(doc, "\n")
	last := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), sessionHeader) {
			last = i
		}
	}
	if last < 0 {
		return nil, nil
	}

	info := parseSessionHeader(strings.TrimSpace(lines[last]))
	tail := strings.Join(lines[last+1:], "\n")
	info.Agent = extractField(tail, "Agent", "Unknown")
	info.Handoff = extractHandoff(tail)
	return &info, nil
}

// parseSessionHeader reads `## Session Log: <date>` with an optional
// `(Session <n>)` suffix. The session number defaults to 1.
func parseSessionHeader(line string) domain.SessionInfo {
	rest := strings.TrimSpace(line[len(sessionHeader):])
	info := domain.SessionInfo{Number: 1}
	fields := strings.Fields(rest)
	if len(fields) > 0 {
		info.Date = fields[0]
	}
	if open := strings.Index(rest, "(Session "); open >= 0 {
		nStr := rest[open+len("(Session "):]
		if end := strings.Index(nStr, ")"); end >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(nStr[:end])); err == nil && n > 0 {
				info.Number = n
			}
		}
	}
	return info
}

// extractHandoff returns the first `*To the next Agent: <text>*` note,
// allowing the text to span lines up to the closing asterisk.
func extractHandoff(text string) string {
	const marker = "*To the next Agent:"
	start := strings.Index(text, marker)
	if start < 0 {
		return ""
	}
	rest := text[start+len(marker):]
	if end := strings.Index(rest, "*"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
