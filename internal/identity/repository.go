package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id int64) error
}

const pgUniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT UNIQUE,
    phone         TEXT UNIQUE,
    gender        TEXT,
    password_hash BYTEA,
    role          TEXT NOT NULL DEFAULT 'driver',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const userColumns = `id, name, email, phone, gender, password_hash, role, created_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the users table when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

// Create inserts a new user and returns it with its assigned identifier.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO users (name, email, phone, gender, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		user.Name, nullable(user.Email), nullable(user.Phone), nullable(user.Gender), user.PasswordHash, user.Role, user.CreatedAt.UTC(),
	).Scan(&user.ID)
	if err != nil {
		return User{}, mapPgError(err)
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByIDs fetches every user whose identifier is listed. Unknown ids are skipped.
func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []int64) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.findMany(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id`, ids)
}

// ListByRole returns all users holding role, oldest first.
func (r *PostgresRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	return r.findMany(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, role)
}

// Update overwrites the profile fields of an existing user.
func (r *PostgresRepository) Update(ctx context.Context, user User) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET name = $1, email = $2, phone = $3, gender = $4 WHERE id = $5`,
		user.Name, nullable(user.Email), nullable(user.Phone), nullable(user.Gender), user.ID)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanPgUser(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PostgresRepository) findMany(ctx context.Context, query string, arg any) ([]User, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanPgUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanPgUser(row pgx.Row) (User, error) {
	var (
		user                 User
		email, phone, gender *string
		createdAt            time.Time
	)
	if err := row.Scan(&user.ID, &user.Name, &email, &phone, &gender, &user.PasswordHash, &user.Role, &createdAt); err != nil {
		return User{}, err
	}
	user.Email = deref(email)
	user.Phone = deref(phone)
	user.Gender = deref(gender)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
