// Package sqlite provides a SQLite-backed ports.Store with embedded schema
// migrations. The concurrency-token compare-and-set is a conditional UPDATE
// whose WHERE clause carries the expected token; a zero row count is
// classified with a follow-up read.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jsamuelsen11/go-mediate/internal/adapters/store/sqlite/migrations"
	"github.com/jsamuelsen11/go-mediate/internal/domain"
	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// Store persists entity records in SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ ports.Store         = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Open opens the database at path, applies embedded migrations, and returns
// the store. The DSN enables WAL mode and a busy timeout so concurrent
// conditional writes queue instead of failing immediately.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "sqlite" }

// HealthCheck implements ports.HealthChecker.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const recordColumns = "entity_type, tenant_id, id, payload, token, created_at, updated_at, created_by, updated_by, deleted"

// FindByID implements ports.Store.
func (s *Store) FindByID(ctx context.Context, entityType, tenantID, id string) (*ports.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM entities
		 WHERE entity_type = ? AND tenant_id = ? AND id = ? AND deleted = 0`,
		entityType, tenantID, id,
	)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", entityType, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s %q: %w", entityType, id, err)
	}
	return rec, nil
}

// List implements ports.Store.
func (s *Store) List(ctx context.Context, entityType, tenantID string, includeDeleted bool) ([]ports.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM entities
	 WHERE entity_type = ? AND tenant_id = ?`
	if !includeDeleted {
		query += ` AND deleted = 0`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, entityType, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", entityType, err)
	}
	defer rows.Close()

	out := make([]ports.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", entityType, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", entityType, err)
	}
	return out, nil
}

// Insert implements ports.Store.
func (s *Store) Insert(ctx context.Context, rec ports.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.EntityType, rec.TenantID, rec.ID, rec.Payload, rec.Token,
		toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt),
		rec.CreatedBy, rec.UpdatedBy, boolToInt(rec.Deleted),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%s %q: %w", rec.EntityType, rec.ID, domain.ErrConflict)
		}
		return fmt.Errorf("inserting %s %q: %w", rec.EntityType, rec.ID, err)
	}
	return nil
}

// UpdateWithTokenCheck implements ports.Store.
func (s *Store) UpdateWithTokenCheck(ctx context.Context, rec ports.Record, expectedToken string) error {
	return s.conditionalWrite(ctx, rec, expectedToken, false)
}

// SetDeletedFlag implements ports.Store.
func (s *Store) SetDeletedFlag(ctx context.Context, rec ports.Record, expectedToken string) error {
	return s.conditionalWrite(ctx, rec, expectedToken, true)
}

// conditionalWrite performs the token compare-and-set as one UPDATE. When no
// row is affected, a follow-up read distinguishes a missing record from a
// stale token.
func (s *Store) conditionalWrite(ctx context.Context, rec ports.Record, expectedToken string, markDeleted bool) error {
	deleted := rec.Deleted || markDeleted

	res, err := s.db.ExecContext(ctx,
		`UPDATE entities
		 SET payload = ?, token = ?, updated_at = ?, updated_by = ?, deleted = ?
		 WHERE entity_type = ? AND tenant_id = ? AND id = ? AND token = ? AND deleted = 0`,
		rec.Payload, rec.Token, toMillis(rec.UpdatedAt), rec.UpdatedBy, boolToInt(deleted),
		rec.EntityType, rec.TenantID, rec.ID, expectedToken,
	)
	if err != nil {
		return fmt.Errorf("updating %s %q: %w", rec.EntityType, rec.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s %q: %w", rec.EntityType, rec.ID, err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM entities
		 WHERE entity_type = ? AND tenant_id = ? AND id = ? AND deleted = 0`,
		rec.EntityType, rec.TenantID, rec.ID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", rec.EntityType, rec.ID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("classifying failed update of %s %q: %w", rec.EntityType, rec.ID, err)
	}
	return &domain.ConflictError{EntityType: rec.EntityType, ID: rec.ID}
}

// HardDelete implements ports.Store.
func (s *Store) HardDelete(ctx context.Context, entityType, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entities WHERE entity_type = ? AND tenant_id = ? AND id = ?`,
		entityType, tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", entityType, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", entityType, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %q: %w", entityType, id, domain.ErrNotFound)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*ports.Record, error) {
	var (
		rec                  ports.Record
		createdAt, updatedAt int64
		deleted              int
	)
	if err := s.Scan(
		&rec.EntityType, &rec.TenantID, &rec.ID, &rec.Payload, &rec.Token,
		&createdAt, &updatedAt, &rec.CreatedBy, &rec.UpdatedBy, &deleted,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	rec.Deleted = deleted != 0
	return &rec, nil
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
