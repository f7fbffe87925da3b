package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/migrate/diff"
	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/migrate/sqlgen"
	"github.com/satishbabariya/schema-forge/schema"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Plan the migration between two schema versions",
	Long: `Plan the migration between two schema versions. Each argument is a
schema file or a directory of schema files; schemas are paired by name.

Renames cannot be detected and must be given as hints, either
Schema.old=new or, when the batch holds a single schema, old=new.`,
	Example: `  schemaforge diff v1/crm.schema v2/crm.schema --rename Contact.email=mail
  schemaforge diff v1 v2 --markdown
  schemaforge diff v1 v2 --sql sqlite`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var (
	diffRenames  []string
	diffMarkdown bool
	diffSQL      string
)

func init() {
	diffCmd.Flags().StringArrayVar(&diffRenames, "rename", nil, "rename hint Schema.old=new (repeatable)")
	diffCmd.Flags().BoolVar(&diffMarkdown, "markdown", false, "render plans as markdown")
	diffCmd.Flags().StringVar(&diffSQL, "sql", "", "also print the DDL for a provider (postgres, mysql, sqlite)")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	prev, err := loadBatch(args[:1])
	if err != nil {
		return err
	}
	next, err := loadBatch(args[1:])
	if err != nil {
		return err
	}
	renames, err := parseRenames(diffRenames, next)
	if err != nil {
		return err
	}
	plans, err := planBatch(prev, next, renames)
	if err != nil {
		return err
	}

	if len(plans) == 0 {
		ui.PrintSuccess("No changes")
		return nil
	}
	if diffMarkdown {
		docs := make([]string, len(plans))
		for i, p := range plans {
			docs[i] = p.Markdown()
		}
		if err := ui.PrintMarkdown(strings.Join(docs, "\n")); err != nil {
			return err
		}
	} else {
		for _, p := range plans {
			ui.PrintPlan(p)
		}
	}

	if diffSQL == "" {
		return nil
	}
	gen, err := sqlgen.NewMigrationGenerator(diffSQL)
	if err != nil {
		return err
	}
	for _, p := range plans {
		stmts, err := gen.Generate(p, lookup(prev, p.SchemaName()), lookup(next, p.SchemaName()))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n%s", p.SchemaName(), sqlgen.Script(stmts))
	}
	return nil
}

// parseRenames reads Schema.old=new hints. A hint without a schema applies
// to the only schema of next.
func parseRenames(hints []string, next []schema.SchemaDefinition) (map[schema.SchemaName]diff.Renames, error) {
	out := map[schema.SchemaName]diff.Renames{}
	for _, hint := range hints {
		from, to, ok := strings.Cut(hint, "=")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid rename %q: want Schema.old=new", hint)
		}
		var owner schema.SchemaName
		if s, field, qualified := strings.Cut(from, "."); qualified {
			owner, from = schema.SchemaName(s), field
		} else {
			if len(next) != 1 {
				return nil, fmt.Errorf("rename %q needs a schema prefix when diffing %d schemas", hint, len(next))
			}
			owner = next[0].Name
		}
		if out[owner] == nil {
			out[owner] = diff.Renames{}
		}
		out[owner][schema.FieldName(from)] = schema.FieldName(to)
	}
	return out, nil
}

// planBatch diffs two batches, applying rename hints to the schemas they
// name.
func planBatch(prev, next []schema.SchemaDefinition, renames map[schema.SchemaName]diff.Renames) ([]*plan.MigrationPlan, error) {
	plans := diff.DiffBatch(prev, next)
	for name, hints := range renames {
		before, ok := schema.Lookup(prev, name)
		if !ok {
			return nil, fmt.Errorf("%w: schema %s not in the old batch", diff.ErrInvalidRename, name)
		}
		after, ok := schema.Lookup(next, name)
		if !ok {
			return nil, fmt.Errorf("%w: schema %s not in the new batch", diff.ErrInvalidRename, name)
		}
		p, err := diff.DiffWithRenames(before, after, hints)
		if err != nil {
			return nil, err
		}
		for i := range plans {
			if plans[i].SchemaName() == name {
				plans[i] = p
			}
		}
	}
	return plans, nil
}
