// Package executor applies migration plans to a live database.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/satishbabariya/schema-forge/internal/debug"
	"github.com/satishbabariya/schema-forge/migrate/history"
	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/migrate/sqlgen"
	"github.com/satishbabariya/schema-forge/schema"
)

// Result describes one Apply call.
type Result struct {
	PlanID     string
	Statements []string
	// Skipped is set when the plan was empty or is the latest recorded one.
	Skipped  bool
	Duration time.Duration
}

// MigrationExecutor runs generated DDL and records each applied plan.
// MySQL commits DDL implicitly, so a failed plan there may be partially
// applied; PostgreSQL and SQLite roll back the whole plan.
type MigrationExecutor struct {
	db        *sql.DB
	generator *sqlgen.Generator
	history   *history.Manager
	now       func() time.Time
}

// New creates an executor for db.
func New(db *sql.DB, dialect sqlgen.Dialect) *MigrationExecutor {
	return &MigrationExecutor{
		db:        db,
		generator: sqlgen.NewGenerator(dialect),
		history:   history.NewManager(db, dialect),
		now:       time.Now,
	}
}

// EnsureMigrationTable creates the history table if needed.
func (e *MigrationExecutor) EnsureMigrationTable(ctx context.Context) error {
	return e.history.InitTable(ctx)
}

// Preview compiles the plan without touching the database.
func (e *MigrationExecutor) Preview(p *plan.MigrationPlan, prev, next *schema.SchemaDefinition) ([]string, error) {
	return e.generator.Generate(p, prev, next)
}

// Apply runs the plan in one transaction and records it. Applying a plan
// that is already the latest recorded migration of its schema does nothing.
// A plan recorded earlier is applied again once another migration of the
// schema follows it, e.g. creating a schema after dropping it.
func (e *MigrationExecutor) Apply(ctx context.Context, p *plan.MigrationPlan, prev, next *schema.SchemaDefinition) (*Result, error) {
	res := &Result{PlanID: p.ID().String()}
	if p.IsEmpty() {
		res.Skipped = true
		return res, nil
	}
	if err := e.EnsureMigrationTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure migration table exists: %w", err)
	}
	latest, err := e.history.Latest(ctx, string(p.SchemaName()))
	if err != nil && !errors.Is(err, history.ErrNotFound) {
		return nil, err
	}
	if latest != nil && latest.PlanID == res.PlanID {
		debug.Debug("Migration already applied", "plan", res.PlanID, "schema", p.SchemaName())
		res.Skipped = true
		return res, nil
	}

	stmts, err := e.generator.Generate(p, prev, next)
	if err != nil {
		return nil, err
	}
	res.Statements = stmts

	start := e.now()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	for i, stmt := range stmts {
		debug.Debug("Executing migration statement", "plan", res.PlanID, "index", i+1, "sql", stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("failed to execute statement %d of plan for %s: %w", i+1, p.SchemaName(), err)
		}
	}

	res.Duration = e.now().Sub(start)
	record := history.MigrationRecord{
		PlanID:        res.PlanID,
		Schema:        string(p.SchemaName()),
		FromVersion:   p.FromVersion(),
		ToVersion:     p.ToVersion(),
		Checksum:      history.CalculateChecksum(stmts),
		AppliedAt:     start,
		ExecutionTime: res.Duration.Milliseconds(),
		Snapshot:      history.SerializeSchema(next),
	}
	if err := e.history.Record(ctx, tx, record); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit migration: %w", err)
	}
	debug.Info("Applied migration", "plan", res.PlanID, "schema", p.SchemaName(), "statements", len(stmts))
	return res, nil
}

// Applied lists the recorded migrations, oldest first.
func (e *MigrationExecutor) Applied(ctx context.Context) ([]history.MigrationRecord, error) {
	if err := e.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}
	return e.history.GetAll(ctx)
}

// Current returns the schema recorded by the latest migration of name, or
// nil when the schema has no history or was dropped.
func (e *MigrationExecutor) Current(ctx context.Context, name schema.SchemaName) (*schema.SchemaDefinition, error) {
	if err := e.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}
	rec, err := e.history.Latest(ctx, string(name))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return history.DeserializeSchema(rec.Snapshot)
}
