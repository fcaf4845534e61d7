package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tracelens/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tracelens",
	Short: "Langfuse field-validation trace analyzer",
	Long:  "Fetches traces and observations from Langfuse, aggregates per-field validation statistics and per-trace cost/usage, and serves or exports the joined results.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
