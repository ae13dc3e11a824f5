package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sadopc/carbontrack/internal/carbon"
)

var _ carbon.Repository = (*PostgresStore)(nil)

// PostgresStore persists emission records in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs the store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the emissions table when missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS emissions (
			id          TEXT PRIMARY KEY,
			type        TEXT NOT NULL,
			category    TEXT NOT NULL DEFAULT 'general',
			value       DOUBLE PRECISION NOT NULL DEFAULT 0,
			date        TIMESTAMPTZ NOT NULL,
			emissions   DOUBLE PRECISION NOT NULL DEFAULT 0,
			notes       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_emissions_date ON emissions(date);
		CREATE INDEX IF NOT EXISTS idx_emissions_type ON emissions(type);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Create(ctx context.Context, rec carbon.Record) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO emissions (id, type, category, value, date, emissions, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.Type, rec.Category, rec.Value, rec.Date.UTC(), rec.Emissions, rec.Notes, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert emission: %w", err)
	}
	return nil
}

func (p *PostgresStore) List(ctx context.Context, f carbon.Filter) ([]carbon.Record, error) {
	query := `SELECT id, type, category, value, date, emissions, notes, created_at FROM emissions WHERE 1=1`
	var args []any
	if f.After != nil {
		args = append(args, f.After.UTC())
		query += fmt.Sprintf(` AND date > $%d`, len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list emissions: %w", err)
	}
	defer rows.Close()

	var records []carbon.Record
	for rows.Next() {
		var rec carbon.Record
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Category, &rec.Value, &rec.Date, &rec.Emissions, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*carbon.Record, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, type, category, value, date, emissions, notes, created_at
		FROM emissions WHERE id = $1
	`, id)
	var rec carbon.Record
	if err := row.Scan(&rec.ID, &rec.Type, &rec.Category, &rec.Value, &rec.Date, &rec.Emissions, &rec.Notes, &rec.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, carbon.ErrNotFound
		}
		return nil, fmt.Errorf("get emission %s: %w", id, err)
	}
	return &rec, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM emissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete emission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return carbon.ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
