package main

import (
	"os"

	"github.com/aretw0/storyline/internal/cli"
	"github.com/aretw0/storyline/internal/presentation/tree"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Replay a recorded lifecycle against the in-memory backend",
	Long: `Drives the reporter through the events of a YAML script, using the in-memory
reporting backend, and prints the resulting item tree.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := tree.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		failLaunch, _ := cmd.Flags().GetBool("fail-launch")
		if addr, _ := cmd.Flags().GetString("journal-redis"); addr != "" {
			cfg.Journal.RedisAddr = addr
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunReplay(ctx, cfg, cli.ReplayOptions{
			ScriptPath: args[0],
			Format:     format,
			FailLaunch: failLaunch,
			Out:        os.Stdout,
		}, logger)
	},
}

func init() {
	replayCmd.Flags().String("format", "text", "Output format (text, mermaid, markdown)")
	replayCmd.Flags().Bool("fail-launch", false, "Simulate an unreachable reporting service")
	replayCmd.Flags().String("journal-redis", "", "Redis address for the item journal")
	rootCmd.AddCommand(replayCmd)
}
