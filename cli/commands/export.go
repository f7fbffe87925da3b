package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/config"
	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/export/jsonschema"
	"github.com/satishbabariya/schema-forge/schema"
)

var exportCmd = &cobra.Command{
	Use:   "export [files or dirs...]",
	Short: "Export schemas as a JSON Schema document",
	RunE:  runExport,
}

var checkEntityCmd = &cobra.Command{
	Use:   "check-entity <Schema> <body.json> [files or dirs...]",
	Short: "Validate a JSON entity body against its schema",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCheckEntity,
}

var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(checkEntityCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	batch, err := loadBatch(args)
	if err != nil {
		return err
	}
	doc, err := jsonschema.Export(batch)
	if err != nil {
		return err
	}
	if exportOut == "" {
		_, err := cmd.OutOrStdout().Write(doc)
		return err
	}
	if err := writeFile(exportOut, doc); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	ui.PrintSuccess("Exported %d schema(s) to %s", len(batch), exportOut)
	return nil
}

func runCheckEntity(cmd *cobra.Command, args []string) error {
	batch, err := loadBatch(args[2:])
	if err != nil {
		return err
	}
	def, ok := schema.Lookup(batch, schema.SchemaName(args[0]))
	if !ok {
		return fmt.Errorf("unknown schema %s", args[0])
	}

	raw, err := afero.ReadFile(config.AppFs, args[1])
	if err != nil {
		return err
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[1], err)
	}
	if err := jsonschema.ValidateEntity(def, body); err != nil {
		return err
	}
	ui.PrintSuccess("%s is a valid %s", args[1], def.Name)
	return nil
}
