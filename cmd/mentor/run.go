package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/chris/mentor/internal/discord"
	"github.com/chris/mentor/internal/scheduler"
	"github.com/spf13/cobra"
)

func newRunCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Discord bot and the daily check-in scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := env.app()
			if a.cfg.DiscordToken == "" {
				return errors.New("DISCORD_BOT_TOKEN is required for run")
			}

			bot, err := discord.NewBot(a.cfg.DiscordToken, a.svc, a.cfg.ChatRatePerMinute, a.log)
			if err != nil {
				return err
			}
			defer bot.Close()

			sched := scheduler.New(a.db, a.svc, a.cfg.DiscordWebhook, bot.SendDM, a.cfg.DiscordUserIDs, a.log)
			if err := sched.Start(a.cfg.CheckInCron); err != nil {
				return err
			}
			defer sched.Stop()

			a.log.Info("mentor running", "checkin_cron", a.cfg.CheckInCron, "cache", a.cfg.CacheBackend)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			a.log.Info("shutting down")
			return nil
		},
	}
}
