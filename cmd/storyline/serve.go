package main

import (
	"os"

	"github.com/aretw0/storyline/internal/cli"
	"github.com/aretw0/storyline/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP lifecycle API",
	Long: `Exposes the reporter over HTTP so engines outside Go can drive it, together
with Prometheus metrics at /metrics and the recorded launch trees at /launches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.RunServe(ctx, cfg, logger)
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Received signal", "signal", sig.String())
		}
		return err
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
