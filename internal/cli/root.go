package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontoguard/internal/config"
)

var (
	cfgPath     string
	logLevel    string
	logFile     string
	appCfg      *config.Config
	exitOnError = os.Exit
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config YAML (default ~/.ontoguard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

var rootCmd = &cobra.Command{
	Use:   "ontoguard",
	Short: "Ontology-backed risk gate for AI agent actions",
	Long: "Reduces an agent action to {agent type, capability, tool, risk level},\n" +
		"records it in a deduplicated knowledge graph and decides danger or caution.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logFile != "" {
			cfg.Log.File = logFile
		}
		if err := configureLogger(cfg, logLevel); err != nil {
			return err
		}
		appCfg = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogger()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitOnError(1)
	}
}
