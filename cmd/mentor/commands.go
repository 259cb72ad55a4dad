package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chris/mentor/internal/model"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newChatCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the coach; without a message, start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return chatOnce(cmd, env, strings.Join(args, " "))
			}
			return chatLoop(cmd, env, cmd.InOrStdin())
		},
	}
}

func chatOnce(cmd *cobra.Command, env *cmdEnv, message string) error {
	reply, err := env.svc().Chat(cmd.Context(), env.user(), message)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
	if reply.Source == model.SourceFallback {
		fmt.Fprintf(cmd.ErrOrStderr(), "(offline reply: %s)\n", reply.FallbackReason)
	}
	return nil
}

func chatLoop(cmd *cobra.Command, env *cmdEnv, in io.Reader) error {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	prompt := func() {
		if interactive {
			fmt.Fprint(cmd.OutOrStdout(), "mentor> ")
		}
	}

	scanner := bufio.NewScanner(in)
	prompt()
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "exit" || input == "quit" {
			break
		}
		if input != "" {
			if err := chatOnce(cmd, env, input); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
		}
		prompt()
	}
	return scanner.Err()
}

func newHistoryCmd(env *cmdEnv) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent chat turns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			turns, err := env.svc().ChatHistory(cmd.Context(), env.user(), limit)
			if err != nil {
				return err
			}
			for _, t := range turns {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", t.Timestamp.Local().Format("Jan 2 15:04"), t.Role, t.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of turns to show (0 for all)")
	return cmd
}

func newProfileCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Consistency score, strengths, weaknesses and patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := env.svc().GetProfileAnalysis(cmd.Context(), env.user())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
}

func newRecommendCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Ranked, actionable recommendations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := env.svc().GetRecommendations(cmd.Context(), env.user())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
}

func newPredictCmd(env *cmdEnv) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a day's routine from recent history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := parseDate(date)
			if err != nil {
				return err
			}
			p, err := env.svc().PredictRoutine(cmd.Context(), env.user(), target)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to predict, YYYY-MM-DD (default tomorrow)")
	return cmd
}

func newAnalyticsCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:       "analytics [week|month|quarter]",
		Short:     "Trends, streaks and series for a period",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"week", "month", "quarter"},
		RunE: func(cmd *cobra.Command, args []string) error {
			period := "week"
			if len(args) == 1 {
				period = args[0]
			}
			rep, err := env.svc().GetHabitAnalytics(cmd.Context(), env.user(), period)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func newCheckInCmd(env *cmdEnv) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Print today's check-in digest and record it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := env.svc()
			c, err := svc.Digest(cmd.Context(), env.user())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Summary)
			if dryRun {
				return nil
			}
			return svc.RecordCheckIn(cmd.Context(), c)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print without recording")
	return cmd
}
