// Package history records applied migration plans in the database.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/satishbabariya/schema-forge/migrate/sqlgen"
	"github.com/satishbabariya/schema-forge/schema"
)

// TableName is the history table.
const TableName = "_schemaforge_migrations"

// timeLayout has a fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MigrationRecord is one applied plan.
type MigrationRecord struct {
	PlanID        string
	Schema        string
	FromVersion   uint32
	ToVersion     uint32
	Checksum      string
	AppliedAt     time.Time
	ExecutionTime int64 // milliseconds
	// Snapshot is the canonical source of the schema after the plan; empty
	// when the plan dropped the schema.
	Snapshot string
}

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Manager reads and writes the history table.
type Manager struct {
	db      *sql.DB
	dialect sqlgen.Dialect
}

// NewManager creates a history manager.
func NewManager(db *sql.DB, dialect sqlgen.Dialect) *Manager {
	return &Manager{db: db, dialect: dialect}
}

// InitTable creates the history table if it does not exist.
func (m *Manager) InitTable(ctx context.Context) error {
	d := m.dialect
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    plan_id %s NOT NULL,
    schema_name VARCHAR(255) NOT NULL,
    from_version BIGINT NOT NULL,
    to_version BIGINT NOT NULL,
    checksum VARCHAR(64) NOT NULL,
    applied_at VARCHAR(64) NOT NULL,
    execution_time BIGINT NOT NULL,
    snapshot %s,
    PRIMARY KEY (plan_id, applied_at)
)`, d.QuoteIdent(TableName), d.IDType(), d.ColumnType(schema.RichText{}))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

// Record inserts r using q, normally the transaction that applied the plan.
func (m *Manager) Record(ctx context.Context, q Querier, r MigrationRecord) error {
	_, err := q.ExecContext(ctx, m.insertSQL(),
		r.PlanID,
		r.Schema,
		int64(r.FromVersion),
		int64(r.ToVersion),
		r.Checksum,
		r.AppliedAt.UTC().Format(timeLayout),
		r.ExecutionTime,
		r.Snapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", r.PlanID, err)
	}
	return nil
}

// GetAll returns every record, oldest first.
func (m *Manager) GetAll(ctx context.Context) ([]MigrationRecord, error) {
	query := fmt.Sprintf(`SELECT plan_id, schema_name, from_version, to_version, checksum, applied_at, execution_time, snapshot
FROM %s ORDER BY applied_at, plan_id`, m.dialect.QuoteIdent(TableName))
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var r MigrationRecord
		var from, to int64
		var applied string
		var snapshot sql.NullString
		if err := rows.Scan(&r.PlanID, &r.Schema, &from, &to, &r.Checksum, &applied, &r.ExecutionTime, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		r.FromVersion, r.ToVersion = uint32(from), uint32(to)
		if r.AppliedAt, err = time.Parse(timeLayout, applied); err != nil {
			return nil, fmt.Errorf("migration %s has a malformed applied_at: %w", r.PlanID, err)
		}
		r.Snapshot = snapshot.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Latest returns the most recent record for a schema.
func (m *Manager) Latest(ctx context.Context, schemaName string) (*MigrationRecord, error) {
	records, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Schema == schemaName {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

// ErrNotFound is returned by Latest for a schema without history.
var ErrNotFound = errors.New("no migration recorded")

func (m *Manager) insertSQL() string {
	placeholders := make([]string, 8)
	for i := range placeholders {
		placeholders[i] = m.dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf(`INSERT INTO %s (plan_id, schema_name, from_version, to_version, checksum, applied_at, execution_time, snapshot)
VALUES (%s)`, m.dialect.QuoteIdent(TableName), strings.Join(placeholders, ", "))
}

// CalculateChecksum hashes the statements of a migration.
func CalculateChecksum(statements []string) string {
	h := sha256.New()
	for _, s := range statements {
		h.Write([]byte(s))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
