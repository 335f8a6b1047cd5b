package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "opsdesk",
		Short:         "Backend for leads, tasks, budget and team chat",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP and websocket server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "seed-admin",
			Short: "Create the admin account from ADMIN_EMAIL/ADMIN_PASSWORD if missing",
			RunE:  runSeedAdmin,
		},
	)
	return root
}
