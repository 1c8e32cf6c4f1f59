package records

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mirubato/mirubato/internal/common"
	"github.com/mirubato/mirubato/internal/dbx"
	"github.com/mirubato/mirubato/internal/models"
	"github.com/mirubato/mirubato/internal/repair/records/migrations"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or
// *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RunMigrations applies the embedded goose migrations for sync_records.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open connects to the remote store and applies migrations. The caller owns
// the returned *sql.DB.
func Open(ctx context.Context, dsn string) (*sql.DB, *PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sync store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("pinging sync store: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating sync store: %w", err)
	}
	return db, NewPostgresRepository(db), nil
}

// ListByUser returns all records for one user, tombstones included.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.SyncRecord, error) {
	query := `
		SELECT id, user_id, entity_type, entity_id, data, checksum, version,
		       created_at, updated_at, deleted_at, COALESCE(device_id, '')
		FROM sync_records
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync records: %w", err)
	}
	defer rows.Close()

	var result []*models.SyncRecord
	for rows.Next() {
		var rec models.SyncRecord
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.EntityType, &rec.EntityID,
			&rec.Data, &rec.Checksum, &rec.Version,
			&rec.CreatedAt, &rec.UpdatedAt, &deletedAt, &rec.DeviceID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			rec.DeletedAt = &t
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync records: %w", err)
	}
	return result, nil
}

// Update rewrites the mutable columns of one record. Exactly one row must be
// affected; zero rows means the record vanished under us.
func (r *PostgresRepository) Update(ctx context.Context, rec *models.SyncRecord) error {
	query := `
		UPDATE sync_records
		SET entity_id = $2, data = $3, checksum = $4, version = $5,
		    updated_at = $6, deleted_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.EntityID, rec.Data, rec.Checksum, rec.Version, rec.UpdatedAt, rec.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to update sync record %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: sync record %s", common.ErrNotFound, rec.ID)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected updating %s: %d", rec.ID, n)
	}
	return nil
}

// Delete removes one record by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sync_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: sync record %s", common.ErrNotFound, id)
	}
	return nil
}
