package engine

import (
	"strconv"
	"strings"

	"softloop/internal/domain"
)

// The plan grammar is a fixed, human-edited markdown subset. Each record
// kind gets its own line scanner returning (value, ok); a non-matching
// line is skipped, never an error.

// extractField returns the first non-empty value of a `**Label:** value`
// line, or def when no line matches.
func extractField(doc, label, def string) string {
	prefix := "**" + label + ":**"
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		if v := strings.TrimSpace(line[len(prefix):]); v != "" {
			return v
		}
	}
	return def
}

// classifyPlanState maps free status text onto the plan lifecycle,
// checked in priority order with the first match winning.
func classifyPlanState(status string) domain.PlanState {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "complete"):
		return domain.PlanComplete
	case strings.Contains(s, "paused"):
		return domain.PlanPaused
	default:
		return domain.PlanActive
	}
}

// readPhases scans for status-table rows of the form
// `| Phase <id> - <name> | <glyph> <word> |` in document order.
// Duplicate ids are kept as-is; the plan text owns that ambiguity.
func readPhases(doc string) []domain.PhaseSummary {
	var phases []domain.PhaseSummary
	for _, line := range strings.Split(doc, "\n") {
		p, ok := parsePhaseRow(line)
		if !ok {
			continue
		}
		p.TasksComplete, p.TasksTotal = countPhaseTasks(doc, p.ID)
		phases = append(phases, p)
	}
	return phases
}

func parsePhaseRow(line string) (domain.PhaseSummary, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return domain.PhaseSummary{}, false
	}
	cells := strings.Split(line, "|")
	if len(cells) < 4 {
		return domain.PhaseSummary{}, false
	}
	name := strings.TrimSpace(cells[1])
	status := strings.TrimSpace(cells[2])
	if !strings.HasPrefix(name, "Phase ") {
		return domain.PhaseSummary{}, false
	}
	idStr, rest, found := strings.Cut(name[len("Phase "):], " - ")
	if !found {
		return domain.PhaseSummary{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil || id <= 0 {
		return domain.PhaseSummary{}, false
	}
	fields := strings.Fields(status)
	if len(fields) == 0 {
		return domain.PhaseSummary{}, false
	}
	return domain.PhaseSummary{
		ID:    id,
		Name:  strings.TrimSpace(rest),
		State: classifyPhaseState(fields[0]),
	}, true
}

// classifyPhaseState maps a status glyph onto the phase lifecycle. Any
// glyph that is neither done nor in-progress reads as planned.
func classifyPhaseState(glyph string) domain.PhaseState {
	switch glyph {
	case "✅":
		return domain.PhaseComplete
	case "🔄":
		return domain.PhaseActive
	default:
		return domain.PhasePlanned
	}
}

// readTasks scans for checkbox task lines across all phases, preserving
// document order.
func readTasks(doc string) []domain.Task {
	var tasks []domain.Task
	for _, line := range strings.Split(doc, "\n") {
		t, ok := parseTaskLine(line)
		if !ok {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// countPhaseTasks tallies completed/total task lines for one phase. It
// is an independent pass over the raw text so the phase summary table
// never depends on how the full task list was assembled.
func countPhaseTasks(doc string, phaseID int) (complete, total int) {
	for _, line := range strings.Split(doc, "\n") {
		t, ok := parseTaskLine(line)
		if !ok || t.Phase != phaseID {
			continue
		}
		total++
		if t.Completed {
			complete++
		}
	}
	return complete, total
}

// parseTaskLine matches the exact forms `- [ ] <phase>.<n>: <desc>` and
// `- [x] <phase>.<n>: <desc>`. Any other bracket character skips the
// line.
func parseTaskLine(line string) (domain.Task, bool) {
	line = strings.TrimSpace(line)
	var completed bool
	switch {
	case strings.HasPrefix(line, "- [ ] "):
		completed = false
	case strings.HasPrefix(line, "- [x] "):
		completed = true
	default:
		return domain.Task{}, false
	}
	rest := line[len("- [ ] "):]
	id, desc, found := strings.Cut(rest, ":")
	if !found {
		return domain.Task{}, false
	}
	id = strings.TrimSpace(id)
	phaseStr, nStr, found := strings.Cut(id, ".")
	if !found {
		return domain.Task{}, false
	}
	phase, err := strconv.Atoi(phaseStr)
	if err != nil || phase <= 0 {
		return domain.Task{}, false
	}
	n, err := strconv.Atoi(nStr)
	if err != nil || n <= 0 {
		return domain.Task{}, false
	}
	desc, hash := extractCommitAnnotation(strings.TrimSpace(desc))
	return domain.Task{
		ID:          id,
		Phase:       phase,
		Description: desc,
		Completed:   completed,
		CommitHash:  hash,
	}, true
}

// extractCommitAnnotation pulls a `(commit: <hex>)` annotation out of a
// task description, returning the cleaned description and the hash. A
// malformed annotation is left untouched in the description.
func extractCommitAnnotation(desc string) (string, string) {
	const marker = "(commit:"
	start := strings.Index(desc, marker)
	if start < 0 {
		return desc, ""
	}
	end := strings.Index(desc[start:], ")")
	if end < 0 {
		return desc, ""
	}
	end += start
	hash := strings.TrimSpace(desc[start+len(marker) : end])
	if !isHex(hash) {
		return desc, ""
	}
	left := strings.TrimRight(desc[:start], " ")
	right := strings.TrimLeft(desc[end+1:], " ")
	cleaned := left
	if left != "" && right != "" {
		cleaned = left + " " + right
	} else if right != "" {
		cleaned = right
	}
	return cleaned, hash
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
