package main

import (
	"github.com/spf13/cobra"

	"campaigner/internal/config"
	"campaigner/internal/format"
	"campaigner/internal/logging"
	mcpserver "campaigner/internal/mcp"
)

// version is set at build time via -ldflags.
var version = "dev"

// cfg is the effective configuration after flags override the environment.
var cfg config.Config

var rootFlags struct {
	envFile   string
	logLevel  string
	logFormat string
	seed      uint64
	schema    string
	table     string
	workers   int
}

var rootCmd = &cobra.Command{
	Use:   "campaigner",
	Short: "Compose intervention campaigns for the malaria simulation engine",
	Long: `campaigner turns campaign plans (YAML or JSON) into the campaign.json
document the simulation engine reads: scheduled and triggered deliveries,
diagnostic branches, focal and reactive cascades and treatment seeking.

Settings come from CAMPAIGNER_* environment variables, optionally loaded
from a .env file; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.envFile, "env-file", ".env", "Dotenv file read before the environment (skipped when missing)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $CAMPAIGNER_LOG_LEVEL or info)")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (default: $CAMPAIGNER_LOG_FORMAT or text)")
	f.Uint64Var(&rootFlags.seed, "seed", 0, "Tether seed; 0 uses the plan seed or a random one (default: $CAMPAIGNER_SEED)")
	f.StringVar(&rootFlags.schema, "schema", "", "Engine schema.json to validate against (default: $CAMPAIGNER_SCHEMA or embedded classes)")
	f.StringVar(&rootFlags.table, "table", "", "Table style: ascii or markdown (default: $CAMPAIGNER_TABLE or ascii)")
	f.IntVar(&rootFlags.workers, "workers", 0, "Plans built concurrently (default: $CAMPAIGNER_WORKERS or 4)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(drugsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
	mcpserver.Version = version
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(rootFlags.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = rootFlags.logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = rootFlags.logFormat
	}
	if flags.Changed("seed") {
		c.Seed = rootFlags.seed
	}
	if flags.Changed("schema") {
		c.Schema = rootFlags.schema
	}
	if flags.Changed("table") {
		c.Table = rootFlags.table
	}
	if flags.Changed("workers") {
		c.Workers = max(rootFlags.workers, 1)
	}

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logFormat, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	if _, err := format.ParseMode(c.Table); err != nil {
		return err
	}
	logging.Init(level, logFormat, cmd.ErrOrStderr())
	cfg = c
	return nil
}
