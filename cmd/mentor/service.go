package main

import (
	"io"

	"github.com/chris/mentor/internal/service"
	"github.com/spf13/cobra"
)

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the launchd background service (macOS)",
	}
	simple := func(use, short string, fn func() error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE:  func(*cobra.Command, []string) error { return fn() },
		}
	}
	withOut := func(use, short string, fn func(out io.Writer) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE:  func(cmd *cobra.Command, _ []string) error { return fn(cmd.OutOrStdout()) },
		}
	}
	cmd.AddCommand(
		withOut("install", "Install the binary and load the launchd agent", service.Install),
		withOut("uninstall", "Unload the agent and remove the binary", service.Uninstall),
		simple("start", "Start the agent", service.Start),
		simple("stop", "Stop the agent", service.Stop),
		simple("restart", "Restart the agent", service.Restart),
		withOut("status", "Show whether the agent is loaded", service.Status),
		withOut("logs", "Tail the agent's logs", service.Logs),
	)
	return cmd
}
