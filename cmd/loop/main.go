package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"softloop/internal/app"
	"softloop/internal/engine"
	"softloop/internal/render"
	"softloop/internal/scaffold"
)

var rootCmd = &cobra.Command{
	Use:   "loop",
	Short: "Softloop CLI",
	Long: `Softloop tracks a project through two markdown documents and scores how
done the work really is.
- PLAN.md: phases and checkbox tasks with lifecycle status.
- JOURNAL.md: append-only session log with agent handoffs.
- Checkpoint: cross-references plan tasks against git history and a build
  probe, producing a 0-100 confidence per task and a pass/fail verdict.
Both documents are plain markdown; edit them by hand, softloop only ever
appends to the journal.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("SOFTLOOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("agent", "", "agent name (overrides config)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("agent", rootCmd.PersistentFlags().Lookup("agent"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(checkpointCmd())
	rootCmd.AddCommand(handoffCmd())
	rootCmd.AddCommand(logCmd())
}

func initCmd() *cobra.Command {
	var p scaffold.Params
	var noInput, force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold PLAN.md, JOURNAL.md and softloop.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Agent = viper.GetString("agent")
			if p.Project == "" && !noInput {
				if err := runInitForm(&p); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Println("init cancelled")
						return nil
					}
					return err
				}
			}
			p.Date = time.Now().Format("2006-01-02")
			workspace := viper.GetString("workspace")
			if err := scaffold.Ensure(workspace, p, force); err != nil {
				return err
			}
			fmt.Printf("Scaffolded %s: PLAN.md, JOURNAL.md, softloop.yml\n", workspace)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Project, "name", "", "project name")
	cmd.Flags().StringVar(&p.Description, "description", "", "project description")
	cmd.Flags().StringVar(&p.FirstPhase, "phase", "", "first phase name")
	cmd.Flags().StringVar(&p.Branch, "branch", "main", "working branch")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "never prompt interactively")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing documents")
	return cmd
}

func runInitForm(p *scaffold.Params) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&p.Project).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("project name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("What is this project about?").
				Value(&p.Description),
			huh.NewInput().
				Title("First phase").
				Placeholder("Foundation").
				Value(&p.FirstPhase),
			huh.NewInput().
				Title("Agent").
				Placeholder("your name or agent id").
				Value(&p.Agent),
		),
	)
	return form.Run()
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the plan snapshot",
		Long:  "One read of PLAN.md and JOURNAL.md: phases, task progress, last session, and git context.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				snap, err := e.Snapshot(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(snap)
				}
				branch, changes := e.GitInfo(ctx)
				render.Snapshot(os.Stdout, snap, branch, changes)
				if session, err := e.LastSession(ctx); err == nil && session != nil {
					fmt.Println()
					render.Session(os.Stdout, session)
				}
				return nil
			})
		},
	}
	return cmd
}

func checkpointCmd() *cobra.Command {
	var phase int
	var noBuild, noJournal bool
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Verify a phase against git history",
		Long: `Builds the verification matrix for a phase: every task is scored 0-100
by completion flag and commit evidence, the build probe runs once, and
the result is appended to the journal. A failed verdict is output, not
an error; the command only exits non-zero on hard failures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res, err := e.Checkpoint(ctx, engine.CheckpointOptions{
					Phase:     phase,
					SkipBuild: noBuild,
					Record:    !noJournal,
				})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				render.Checkpoint(os.Stdout, res)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&phase, "phase", 0, "phase id (default: current phase)")
	cmd.Flags().BoolVar(&noBuild, "no-build", false, "skip the build probe")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "do not append to the journal")
	return cmd
}

func handoffCmd() *cobra.Command {
	var opts engine.HandoffOptions
	var completed, next, blockers []string
	var noInput bool
	cmd := &cobra.Command{
		Use:   "handoff",
		Short: "Record a session handoff in the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Agent = viper.GetString("agent")
			if opts.Summary == "" && !noInput {
				if err := runHandoffForm(&opts); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Println("handoff cancelled")
						return nil
					}
					return err
				}
			} else {
				opts.Completed = completed
				opts.NextSteps = next
				opts.Blockers = blockers
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				info, err := e.Handoff(ctx, opts)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(info)
				}
				render.Session(os.Stdout, &info)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "session summary")
	cmd.Flags().StringArrayVar(&completed, "completed", []string{}, "completed item (repeatable)")
	cmd.Flags().StringArrayVar(&next, "next", []string{}, "next step (repeatable)")
	cmd.Flags().StringArrayVar(&blockers, "blocker", []string{}, "blocker (repeatable)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "note to the next agent")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "never prompt interactively")
	return cmd
}

func runHandoffForm(opts *engine.HandoffOptions) error {
	var completed, next, blockers string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Summary").
				Description("What happened this session?").
				Value(&opts.Summary).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("summary is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Completed").
				Description("Comma-separated items (optional)").
				Value(&completed),
			huh.NewInput().
				Title("Next steps").
				Description("Comma-separated items (optional)").
				Value(&next),
			huh.NewInput().
				Title("Blockers").
				Description("Comma-separated items (optional)").
				Value(&blockers),
			huh.NewInput().
				Title("Note to the next agent").
				Value(&opts.Note),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	opts.Completed = splitList(completed)
	opts.NextSteps = splitList(next)
	opts.Blockers = splitList(blockers)
	return nil
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Session journal",
	}
	log.AddCommand(logLastCmd())
	return log
}

func logLastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the most recent session entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				session, err := e.LastSession(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(session)
				}
				render.Session(os.Stdout, session)
				return nil
			})
		},
	}
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	ac, err := app.Resolve(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	e := ac.Engine
	if agent := viper.GetString("agent"); agent != "" {
		e.Config.Agent.Name = agent
	}
	return fn(ctx, e)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
