package main

import (
	"os"

	"github.com/aretw0/storyline/internal/cli"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the Redis item journal",
}

// withJournal opens the configured journal for the duration of fn.
func withJournal(cmd *cobra.Command, fn func(j cli.InspectableJournal) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		cfg.Journal.RedisAddr = addr
	}

	j, closeJournal, err := cli.OpenJournal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeJournal()
	return fn(j)
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List launches with pending items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(j cli.InspectableJournal) error {
			return cli.ListLaunches(cmd.Context(), j, os.Stdout)
		})
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <launch-id>",
	Short: "Show the pending items of a launch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(j cli.InspectableJournal) error {
			return cli.ShowLaunch(cmd.Context(), j, domain.ItemID(args[0]), os.Stdout)
		})
	},
}

var journalClearCmd = &cobra.Command{
	Use:     "clear <launch-id>",
	Aliases: []string{"rm"},
	Short:   "Drop the journal entries of a launch",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(j cli.InspectableJournal) error {
			return cli.ClearLaunch(cmd.Context(), j, domain.ItemID(args[0]), os.Stdout)
		})
	},
}

func init() {
	journalCmd.PersistentFlags().String("redis", "", "Redis address (overrides journal.redis_addr)")
	journalCmd.AddCommand(journalListCmd, journalShowCmd, journalClearCmd)
	rootCmd.AddCommand(journalCmd)
}
