package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Repository errors
var (
	ErrDuplicateEmail = errors.New("db: email already registered")
	ErrNotFound       = errors.New("db: record not found")
)

// User is a row of the users table.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// HistoryRecord is a row of the image_history table. Images are base64 PNG
// text, exactly as returned to the client.
type HistoryRecord struct {
	ID               int64
	UserID           int64
	Style            string
	OriginalImage    string
	TransformedImage string
	CreatedAt        time.Time
}

// Repository runs the account and history queries. When an AsyncWriter is
// attached and running, history inserts are queued instead of written inline.
type Repository struct {
	db          *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a Repository. asyncWriter may be nil.
func NewRepository(db *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{db: db, asyncWriter: asyncWriter}
}

// CreateUser inserts u and returns its id. The email is stored as given;
// callers normalize it. A taken email returns ErrDuplicateEmail.
func (r *Repository) CreateUser(ctx context.Context, u User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash) VALUES (?, ?, ?, ?)`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateEmail, u.Email)
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// GetUserByEmail returns the user with exactly this email, or ErrNotFound.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var (
		u       User
		created any
	)
	err := r.db.QueryRowScan(ctx,
		`SELECT id, first_name, last_name, email, password_hash, created_at FROM users WHERE email = ?`,
		[]any{email},
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}
	u.CreatedAt = parseTimestamp(created)
	return u, nil
}

const insertHistoryQuery = `
	INSERT INTO image_history (user_id, style, original_image, transformed_image)
	VALUES (?, ?, ?, ?)`

// InsertHistory stores a transformation. It returns the new row id, or 0
// when the write was queued on the async writer.
func (r *Repository) InsertHistory(ctx context.Context, rec HistoryRecord) (int64, error) {
	args := []any{rec.UserID, rec.Style, rec.OriginalImage, rec.TransformedImage}

	if r.asyncWriter != nil {
		queued := r.asyncWriter.Write("insert image_history", func(ctx context.Context) error {
			_, err := r.db.ExecContext(ctx, insertHistoryQuery, args...)
			return err
		})
		if queued {
			return 0, nil
		}
		// Fall through to a synchronous write when the buffer is full.
	}

	res, err := r.db.ExecContext(ctx, insertHistoryQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// ListHistory returns a user's history, newest first. Rows created in the
// same second are ordered by id, newest first.
func (r *Repository) ListHistory(ctx context.Context, userID int64) ([]HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, style, original_image, transformed_image, created_at
		FROM image_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []HistoryRecord{}
	for rows.Next() {
		var (
			rec     HistoryRecord
			created any
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Style, &rec.OriginalImage, &rec.TransformedImage, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.CreatedAt = parseTimestamp(created)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return records, nil
}

// DeleteHistory removes one history row. Deleting a missing id succeeds.
func (r *Repository) DeleteHistory(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM image_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete history %d: %w", id, err)
	}
	return nil
}

// CountHistory returns the number of history rows across all users.
func (r *Repository) CountHistory(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowScan(ctx, `SELECT COUNT(*) FROM image_history`, nil, &n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

// parseTimestamp accepts created_at as the driver hands it back: a time.Time
// for DATETIME columns, or the raw CURRENT_TIMESTAMP text.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts.UTC()
			}
		}
	case []byte:
		return parseTimestamp(string(t))
	}
	return time.Time{}
}
