package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    email         TEXT UNIQUE,
    phone         TEXT UNIQUE,
    gender        TEXT,
    password_hash BLOB,
    role          TEXT NOT NULL DEFAULT 'driver',
    created_at    INTEGER NOT NULL
)`

// SQLiteRepository implements Repository on an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed identity repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrate creates the users table when missing.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, user User) (User, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (name, email, phone, gender, password_hash, role, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name, nullable(user.Email), nullable(user.Phone), nullable(user.Gender), user.PasswordHash, user.Role, user.CreatedAt.UnixMilli())
	if err != nil {
		return User{}, mapSQLiteError(err)
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)
}

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *SQLiteRepository) FindByIDs(ctx context.Context, ids []int64) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.findMany(ctx, `SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
}

func (r *SQLiteRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	return r.findMany(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY id`, role)
}

func (r *SQLiteRepository) Update(ctx context.Context, user User) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, email = ?, phone = ?, gender = ? WHERE id = ?`,
		user.Name, nullable(user.Email), nullable(user.Phone), nullable(user.Gender), user.ID)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) findOne(ctx context.Context, query string, args ...any) (User, error) {
	user, err := scanSQLiteUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *SQLiteRepository) findMany(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row rowScanner) (User, error) {
	var (
		user                 User
		email, phone, gender sql.NullString
		createdAt            int64
	)
	if err := row.Scan(&user.ID, &user.Name, &email, &phone, &gender, &user.PasswordHash, &user.Role, &createdAt); err != nil {
		return User{}, err
	}
	user.Email = email.String
	user.Phone = phone.String
	user.Gender = gender.String
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return user, nil
}

func mapSQLiteError(err error) error {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrDuplicate
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
