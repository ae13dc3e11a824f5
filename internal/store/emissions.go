package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/carbontrack/internal/carbon"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func (s *Store) Create(ctx context.Context, rec carbon.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO emissions (id, type, category, value, date, emissions, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Type, rec.Category, rec.Value, formatTime(rec.Date), rec.Emissions, rec.Notes, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert emission: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*carbon.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, category, value, date, emissions, notes, created_at
		 FROM emissions WHERE id = ?`, id,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, carbon.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get emission %s: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) List(ctx context.Context, f carbon.Filter) ([]carbon.Record, error) {
	query := `SELECT id, type, category, value, date, emissions, notes, created_at FROM emissions WHERE 1=1`
	var args []any

	if f.After != nil {
		query += ` AND date > ?`
		args = append(args, formatTime(*f.After))
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list emissions: %w", err)
	}
	defer rows.Close()

	var records []carbon.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM emissions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete emission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete emission: %w", err)
	}
	if n == 0 {
		return carbon.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (carbon.Record, error) {
	var rec carbon.Record
	var date, createdAt string
	if err := sc.Scan(&rec.ID, &rec.Type, &rec.Category, &rec.Value, &date, &rec.Emissions, &rec.Notes, &createdAt); err != nil {
		return carbon.Record{}, err
	}
	rec.Date = parseTime(date)
	rec.CreatedAt = parseTime(createdAt)
	return rec, nil
}
