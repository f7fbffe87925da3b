package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/schema"
)

var parseCmd = &cobra.Command{
	Use:   "parse [files or dirs...]",
	Short: "Parse and validate schemas and summarise them",
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	batch, err := loadBatch(args)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(batch))
	for _, def := range batch {
		rows = append(rows, summaryRow(def))
	}
	if err := ui.PrintTable([]string{"Schema", "Version", "Fields", "Display", "Relations"}, rows); err != nil {
		return err
	}
	ui.PrintSuccess("Parsed %d schema(s)", len(batch))
	return nil
}

func summaryRow(def schema.SchemaDefinition) []string {
	var relations []string
	for _, f := range def.Fields {
		if rel, ok := f.Type.(schema.Relation); ok {
			relations = append(relations, fmt.Sprintf("%s → %s", f.Name, rel.Target))
		}
	}
	display := string(def.DisplayField)
	if display == "" {
		display = "-"
	}
	rel := strings.Join(relations, ", ")
	if rel == "" {
		rel = "-"
	}
	return []string{
		string(def.Name),
		strconv.FormatUint(uint64(def.Version), 10),
		strconv.Itoa(len(def.Fields)),
		display,
		rel,
	}
}
