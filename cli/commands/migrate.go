package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/config"
	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/dsl"
	"github.com/satishbabariya/schema-forge/internal/debug"
	"github.com/satishbabariya/schema-forge/migrate/diff"
	"github.com/satishbabariya/schema-forge/migrate/executor"
	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/migrate/sqlgen"
	"github.com/satishbabariya/schema-forge/schema"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [schema-dir]",
	Short: "Plan and apply migrations to the database",
	Long: `Plan and apply migrations to the database.

The schemas in schema-dir (default: schema_dir from the config) are
diffed against the snapshot of the last applied batch in state_dir.
Plans with steps that need confirmation or destroy data are only applied
after a prompt, unless --yes is given. After a successful apply the
snapshot is updated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

var migrateHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List the migrations recorded in the database",
	Args:  cobra.NoArgs,
	RunE:  runMigrateHistory,
}

var (
	migrateYes    bool
	migrateDryRun bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false, "apply without asking for confirmation")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "print the plans and SQL without applying them")

	migrateCmd.AddCommand(migrateHistoryCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadSnapshot reads the last applied batch; a missing snapshot is an
// empty batch.
func loadSnapshot() ([]schema.SchemaDefinition, error) {
	content, err := afero.ReadFile(config.AppFs, cfg.SnapshotPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	defs, diags := dsl.Parse(string(content))
	if diags.HasErrors() {
		return nil, fmt.Errorf("corrupt snapshot %s: %w", cfg.SnapshotPath(), diags.ToResult())
	}
	return defs, nil
}

func saveSnapshot(batch []schema.SchemaDefinition) error {
	if err := writeFile(cfg.SnapshotPath(), []byte(dsl.PrintAll(batch))); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	next, err := loadBatch(args)
	if err != nil {
		return err
	}
	prev, err := loadSnapshot()
	if err != nil {
		return err
	}

	plans := diff.DiffBatch(prev, next)
	if len(plans) == 0 {
		ui.PrintSuccess("Database schema is up to date")
		return nil
	}
	worst := plan.Safe
	for _, p := range plans {
		ui.PrintPlan(p)
		worst = worst.Worst(p.OverallSafety())
	}

	if migrateDryRun {
		gen, err := sqlgen.NewMigrationGenerator(cfg.Provider)
		if err != nil {
			return err
		}
		for _, p := range plans {
			stmts, err := gen.Generate(p, lookup(prev, p.SchemaName()), lookup(next, p.SchemaName()))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sqlgen.Script(stmts))
		}
		ui.PrintInfo("Dry run, nothing was applied")
		return nil
	}

	if worst != plan.Safe && !migrateYes {
		ok, err := ui.Confirm(fmt.Sprintf("Apply %d plan(s) with %s steps?", len(plans), worst), false)
		if err != nil {
			return err
		}
		if !ok {
			ui.PrintWarning("Migration cancelled")
			return nil
		}
	}

	if cfg.DatabaseURL == "" {
		return errors.New("database_url is not set (config, SCHEMAFORGE_DATABASE_URL or DATABASE_URL)")
	}
	db, dialect, err := executor.Open(cfg.Provider, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ex := executor.New(db, dialect)
	for _, p := range plans {
		spinner := ui.Spinner(fmt.Sprintf("Applying %s", p.SchemaName()))
		res, err := ex.Apply(cmd.Context(), p, lookup(prev, p.SchemaName()), lookup(next, p.SchemaName()))
		if err != nil {
			spinner.Fail(fmt.Sprintf("%s failed", p.SchemaName()))
			return err
		}
		if res.Skipped {
			spinner.Info(fmt.Sprintf("%s already applied", p.SchemaName()))
			continue
		}
		spinner.Success(fmt.Sprintf("%s: %d statement(s) in %s", p.SchemaName(), len(res.Statements), res.Duration.Round(time.Millisecond)))
		debug.Info("Applied plan", "schema", p.SchemaName(), "plan", res.PlanID)
	}

	return saveSnapshot(next)
}

func runMigrateHistory(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is not set")
	}
	db, dialect, err := executor.Open(cfg.Provider, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := executor.New(db, dialect).Applied(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ui.PrintInfo("No migrations applied yet")
		return nil
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.AppliedAt.Local().Format(time.DateTime),
			r.Schema,
			strconv.FormatUint(uint64(r.FromVersion), 10) + " → " + strconv.FormatUint(uint64(r.ToVersion), 10),
			r.PlanID,
			strconv.FormatInt(r.ExecutionTime, 10) + "ms",
		}
	}
	return ui.PrintTable([]string{"Applied", "Schema", "Versions", "Plan", "Took"}, rows)
}
