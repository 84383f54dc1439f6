package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores attendance events. Implementations order listings
// newest-first by timestamp, then by id.
type Repository interface {
	Insert(ctx context.Context, event Event) (Event, error)
	ListByUser(ctx context.Context, userID int64) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
	SetVerified(ctx context.Context, id int64, verified bool) (Event, error)
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS attendance (
    id           BIGSERIAL PRIMARY KEY,
    user_id      BIGINT NOT NULL,
    date         TEXT NOT NULL,
    timestamp_ms BIGINT NOT NULL,
    latitude     DOUBLE PRECISION NOT NULL DEFAULT 0,
    longitude    DOUBLE PRECISION NOT NULL DEFAULT 0,
    address      TEXT NOT NULL DEFAULT '',
    photo        TEXT NOT NULL DEFAULT '',
    type         TEXT NOT NULL,
    verified     BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS attendance_user_ts_idx ON attendance (user_id, timestamp_ms DESC)`

const eventColumns = `id, user_id, date, timestamp_ms, latitude, longitude, address, photo, type, verified`

// PostgresRepository keeps the ledger in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed attendance repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the attendance table when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate attendance: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, e Event) (Event, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO attendance (user_id, date, timestamp_ms, latitude, longitude, address, photo, type, verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		e.UserID, e.Date, e.Timestamp, e.Latitude, e.Longitude, e.Address, e.Photo, string(e.Type), e.Verified).Scan(&e.ID)
	if err != nil {
		return Event{}, err
	}
	return e, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM attendance WHERE user_id = $1
        ORDER BY timestamp_ms DESC, id DESC`, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM attendance ORDER BY timestamp_ms DESC, id DESC`)
}

func (r *PostgresRepository) SetVerified(ctx context.Context, id int64, verified bool) (Event, error) {
	row := r.db.QueryRow(ctx, `UPDATE attendance SET verified = $2 WHERE id = $1 RETURNING `+eventColumns, id, verified)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return e, err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		e   Event
		typ string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Timestamp, &e.Latitude, &e.Longitude, &e.Address, &e.Photo, &typ, &e.Verified); err != nil {
		return Event{}, err
	}
	e.Type = EventType(typ)
	return e, nil
}
