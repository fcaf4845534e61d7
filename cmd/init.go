package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/tracelens/internal/config"
)

const configFile = "config.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configFile); err == nil {
			return eris.Errorf("%s already exists, refusing to overwrite", configFile)
		}

		starter := config.Config{
			Langfuse: config.LangfuseConfig{
				Host:      "https://cloud.langfuse.com",
				PublicKey: "pk-lf-...",
				SecretKey: "sk-lf-...",
			},
			Analyze: config.AnalyzeConfig{
				RecentDays:           0,
				TracePageLimit:       50,
				ObservationPageLimit: 100,
			},
			Server: config.ServerConfig{Port: 8080},
			Log:    config.LogConfig{Level: "info", Format: "json"},
		}

		data, err := yaml.Marshal(starter)
		if err != nil {
			return eris.Wrap(err, "marshal starter config")
		}

		if err := os.WriteFile(configFile, data, 0o600); err != nil {
			return eris.Wrap(err, "write config file")
		}

		fmt.Printf("Wrote %s. Fill in your Langfuse keys, or set TRACELENS_LANGFUSE_PUBLIC_KEY / TRACELENS_LANGFUSE_SECRET_KEY instead.\n", configFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
