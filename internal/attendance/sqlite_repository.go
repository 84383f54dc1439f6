package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS attendance (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER NOT NULL,
    date         TEXT NOT NULL,
    timestamp_ms INTEGER NOT NULL,
    latitude     REAL NOT NULL DEFAULT 0,
    longitude    REAL NOT NULL DEFAULT 0,
    address      TEXT NOT NULL DEFAULT '',
    photo        TEXT NOT NULL DEFAULT '',
    type         TEXT NOT NULL,
    verified     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS attendance_user_ts_idx ON attendance (user_id, timestamp_ms DESC)`

// SQLiteRepository keeps the ledger in an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository constructs a SQLite-backed attendance repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrate creates the attendance table when missing.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate attendance: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, e Event) (Event, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO attendance (user_id, date, timestamp_ms, latitude, longitude, address, photo, type, verified)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Date, e.Timestamp, e.Latitude, e.Longitude, e.Address, e.Photo, string(e.Type), e.Verified)
	if err != nil {
		return Event{}, err
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM attendance WHERE user_id = ?
        ORDER BY timestamp_ms DESC, id DESC`, userID)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM attendance ORDER BY timestamp_ms DESC, id DESC`)
}

func (r *SQLiteRepository) SetVerified(ctx context.Context, id int64, verified bool) (Event, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE attendance SET verified = ? WHERE id = ?`, verified, id); err != nil {
		return Event{}, err
	}
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM attendance WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
