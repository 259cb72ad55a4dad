package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chris/mentor/internal/model"
	"github.com/spf13/cobra"
)

// decodeBody reads a JSON object from arg, or from stdin when arg is "-".
func decodeBody(cmd *cobra.Command, arg string, v any) error {
	var r io.Reader = strings.NewReader(arg)
	if arg == "-" {
		r = cmd.InOrStdin()
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidRecord, err)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates look like 2026-03-14: %w", err)
	}
	return d, nil
}

func newLogCmd(env *cmdEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record habits, productivity, mood or preferences",
		Long: `Each subcommand takes a JSON object, or "-" to read it from stdin.

  mentor log habit '{"sleep_hours": 7.5, "exercise_minutes": 30}'
  mentor log mood '{"stress_level": 4, "happiness_level": 7, "energy_level": 6, "motivation_level": 6, "anxiety_level": 3}'`,
	}

	var date string
	habit := &cobra.Command{
		Use:   "habit <json>",
		Short: "Upsert the day's habit log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var h model.HabitLog
			if err := decodeBody(cmd, args[0], &h); err != nil {
				return err
			}
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			if !d.IsZero() {
				h.Date = d
			}
			if err := env.svc().LogHabit(cmd.Context(), env.user(), h); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "habit log saved")
			return nil
		},
	}
	habit.Flags().StringVar(&date, "date", "", "day the log is for, YYYY-MM-DD (default today)")

	var pdate string
	productivity := &cobra.Command{
		Use:   "productivity <json>",
		Short: "Upsert the day's productivity log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p model.ProductivityLog
			if err := decodeBody(cmd, args[0], &p); err != nil {
				return err
			}
			d, err := parseDate(pdate)
			if err != nil {
				return err
			}
			if !d.IsZero() {
				p.Date = d
			}
			if err := env.svc().LogProductivity(cmd.Context(), env.user(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "productivity log saved")
			return nil
		},
	}
	productivity.Flags().StringVar(&pdate, "date", "", "day the log is for, YYYY-MM-DD (default today)")

	mood := &cobra.Command{
		Use:   "mood <json>",
		Short: "Append a mood entry stamped now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m model.MoodLog
			if err := decodeBody(cmd, args[0], &m); err != nil {
				return err
			}
			id, err := env.svc().LogMood(cmd.Context(), env.user(), m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mood entry %d saved\n", id)
			return nil
		},
	}

	profile := &cobra.Command{
		Use:   "profile [json]",
		Short: "Show or replace your preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := env.svc()
			if len(args) == 0 {
				p, err := svc.Profile(cmd.Context(), env.user())
				if err != nil {
					return err
				}
				if p == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no preferences saved")
					return nil
				}
				return printJSON(cmd.OutOrStdout(), p)
			}
			var p model.Profile
			if err := decodeBody(cmd, args[0], &p); err != nil {
				return err
			}
			if err := svc.SaveProfile(cmd.Context(), env.user(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "preferences saved")
			return nil
		},
	}

	cmd.AddCommand(habit, productivity, mood, profile)
	return cmd
}

func newGoalCmd(env *cmdEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}

	add := &cobra.Command{
		Use:     "add <json>",
		Short:   "Create a goal",
		Example: `  mentor goal add '{"title": "Read 12 books", "target_value": 12, "unit": "books"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var g model.Goal
			if err := decodeBody(cmd, args[0], &g); err != nil {
				return err
			}
			id, err := env.svc().AddGoal(cmd.Context(), env.user(), g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "goal %d added\n", id)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			goals, err := env.svc().Goals(cmd.Context(), env.user())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), goals)
		},
	}

	var done bool
	progress := &cobra.Command{
		Use:   "progress <id> <value>",
		Short: "Set a goal's current progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("goal id %q is not a number", args[0])
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("progress %q is not a number", args[1])
			}

			svc := env.svc()
			goals, err := svc.Goals(cmd.Context(), env.user())
			if err != nil {
				return err
			}
			for _, g := range goals {
				if g.ID != id {
					continue
				}
				g.CurrentProgress = value
				g.Completed = g.Completed || done
				if err := svc.UpdateGoal(cmd.Context(), env.user(), g); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "goal %d updated\n", id)
				return nil
			}
			return fmt.Errorf("goal %d: %w", id, model.ErrNotFound)
		},
	}
	progress.Flags().BoolVar(&done, "done", false, "mark the goal completed")

	cmd.AddCommand(add, list, progress)
	return cmd
}
