// Package scaffold produces the fixed-format documents a fresh
// workspace starts from. Template functions are pure: parameters in,
// document text out, no shared state.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"softloop/internal/config"
)

type Params struct {
	Project     string
	Description string
	FirstPhase  string
	Branch      string
	Agent       string
	Date        string // YYYY-MM-DD
}

func (p Params) withDefaults() Params {
	if p.Project == "" {
		p.Project = "Unnamed Project"
	}
	if p.FirstPhase == "" {
		p.FirstPhase = "Foundation"
	}
	if p.Branch == "" {
		p.Branch = "main"
	}
	if p.Agent == "" {
		p.Agent = "Unknown"
	}
	return p
}

// PlanDoc returns a plan document with one active phase and one pending
// task, parseable straight back into a snapshot.
func PlanDoc(p Params) string {
	p = p.withDefaults()
	desc := p.Description
	if desc == "" {
		desc = "Describe the project here."
	}
	return fmt.Sprintf(planTemplate, p.Project, p.Project, p.Branch, p.Date, desc, p.FirstPhase, p.FirstPhase)
}

// JournalDoc returns a journal document seeded with session 1.
func JournalDoc(p Params) string {
	p = p.withDefaults()
	return fmt.Sprintf(journalTemplate, p.Project, p.Date, p.Agent)
}

// ConfigDoc returns the default softloop.yml.
func ConfigDoc(p Params) string {
	return config.GenerateDefault(p.withDefaults().Agent)
}

// Ensure writes the three workspace documents. Without overwrite, any
// existing document is an error rather than a silent rewrite.
func Ensure(dir string, p Params, overwrite bool) error {
	files := map[string]string{
		"PLAN.md":      PlanDoc(p),
		"JOURNAL.md":   JournalDoc(p),
		"softloop.yml": ConfigDoc(p),
	}
	if !overwrite {
		for name := range files {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

const planTemplate = `# %s - Project Plan

**Project:** %s
**Version:** 1.0
**Status:** Active - Phase 1
**Branch:** %s
**Last Updated:** %s

## Overview

%s

## Phase Status

| Phase | Status |
|-------|--------|
| Phase 1 - %s | 🔄 In Progress |

## Tasks

### Phase 1 - %s

- [ ] 1.1: Define the work for this phase
`

const journalTemplate = `# %s - Session Journal

## Session Log: %s (Session 1)

**Agent:** %s

### Summary
Workspace scaffolded.
`
