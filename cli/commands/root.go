package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/config"
	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/cli/internal/update"
	"github.com/satishbabariya/schema-forge/cli/internal/version"
	"github.com/satishbabariya/schema-forge/internal/debug"
)

var (
	cfgFile   string
	debugMode bool
	noColor   bool

	// cfg is resolved before any command runs.
	cfg = &config.Config{SchemaDir: "schemas", Provider: "postgres", StateDir: ".schemaforge"}
)

var rootCmd = &cobra.Command{
	Use:   "schemaforge",
	Short: "Schema DSL toolchain",
	Long: `schemaforge parses, formats and validates schema definitions, plans
migrations between schema versions and applies them to a database.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .schemaforge.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func setup(cmd *cobra.Command, args []string) error {
	if noColor || os.Getenv("NO_COLOR") != "" {
		ui.DisableColor()
	}
	debug.Init(debugMode)

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	if cfg.Debug && !debugMode {
		debug.Init(true)
	}
	return update.CheckMinimum(version.Version, cfg.MinVersion)
}

// Execute is the main entry point for the CLI
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.PrintError("%v", err)
	}
	return err
}
