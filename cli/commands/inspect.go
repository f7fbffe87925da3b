package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/query/filter"
	"github.com/satishbabariya/schema-forge/query/resolve"
	"github.com/satishbabariya/schema-forge/schema"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect [files or dirs...] --path Schema.a.b",
	Short:   "Resolve a field path and show its type",
	Example: `  schemaforge inspect schemas --path Contact.company.industry`,
	RunE:    runInspect,
}

var inspectPath string

func init() {
	inspectCmd.Flags().StringVarP(&inspectPath, "path", "p", "", "path to resolve, starting with the schema name")
	_ = inspectCmd.MarkFlagRequired("path")

	rootCmd.AddCommand(inspectCmd)
}

// splitRooted splits Schema.a.b into its schema and field path.
func splitRooted(s string) (schema.SchemaName, filter.FieldPath, error) {
	root, rest, ok := strings.Cut(s, ".")
	if !ok || root == "" {
		return "", filter.FieldPath{}, fmt.Errorf("path %q must start with a schema name, e.g. Contact.name", s)
	}
	path, err := filter.ParsePath(rest)
	if err != nil {
		return "", filter.FieldPath{}, err
	}
	return schema.SchemaName(root), path, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	batch, err := loadBatch(args)
	if err != nil {
		return err
	}
	root, path, err := splitRooted(inspectPath)
	if err != nil {
		return err
	}

	res, err := resolve.Resolve(batch, root, path)
	if err != nil {
		var pe *resolve.PathError
		if errors.As(err, &pe) && len(pe.Suggestions) > 0 {
			ui.PrintInfo("Fields like %q: %s", pe.Segment, strings.Join(pe.Suggestions, ", "))
		}
		return err
	}
	return ui.PrintTable([]string{"Property", "Value"}, describeResolution(root, path, res))
}

func describeResolution(root schema.SchemaName, path filter.FieldPath, res resolve.Resolution) [][]string {
	hops := []string{string(root)}
	for _, h := range res.Hops {
		hops = append(hops, fmt.Sprintf("%s → %s", h.Field, h.Target))
	}
	members := "-"
	if len(res.Members) > 0 {
		names := make([]string, len(res.Members))
		for i, m := range res.Members {
			names[i] = string(m)
		}
		members = strings.Join(names, ".")
	}
	var mods []string
	if res.Field.Modifiers.Required {
		mods = append(mods, "required")
	}
	if res.Field.Modifiers.Indexed {
		mods = append(mods, "indexed")
	}
	if res.Field.Modifiers.Default != nil {
		mods = append(mods, "default("+res.Field.Modifiers.Default.String()+")")
	}
	modifiers := strings.Join(mods, " ")
	if modifiers == "" {
		modifiers = "-"
	}
	return [][]string{
		{"Path", string(root) + "." + path.String()},
		{"Type", res.Type().String()},
		{"Owner", string(res.Schema)},
		{"Route", strings.Join(hops, ", ")},
		{"Composite members", members},
		{"Modifiers", modifiers},
	}
}
