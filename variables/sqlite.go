package variables

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var errNotOpened = errors.New("database not opened")

// timeLayout is the on-disk format of created_at and updated_at.
const timeLayout = time.RFC3339Nano

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore creates a new SQLite variable store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: func() time.Time { return time.Now().UTC() }}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	s.db = db
	s.path = path
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add creates a variable. Name and value are trimmed.
func (s *SQLiteStore) Add(ctx context.Context, name, value string) (*Variable, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	name, value, err := normalize(name, value)
	if err != nil {
		return nil, err
	}

	now := s.now()
	v := &Variable{
		ID:        uuid.New().String(),
		Name:      name,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO variables (id, name, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Value, now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return nil, wrapWriteError("add", name, err)
	}
	return v, nil
}

// Update changes the name and value of the variable with the given id.
// An empty name or value keeps the current one.
func (s *SQLiteStore) Update(ctx context.Context, id, name, value string) (*Variable, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	v, err := s.get(ctx, `WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = v.Name
	}
	if value == "" {
		value = v.Value
	}
	name, value, err = normalize(name, value)
	if err != nil {
		return nil, err
	}

	v.Name, v.Value, v.UpdatedAt = name, value, s.now()
	_, err = s.db.ExecContext(ctx,
		`UPDATE variables SET name = ?, value = ?, updated_at = ? WHERE id = ?`,
		v.Name, v.Value, v.UpdatedAt.Format(timeLayout), id,
	)
	if err != nil {
		return nil, wrapWriteError("update", name, err)
	}
	return v, nil
}

// Set updates the variable called name, or adds it when it does not exist.
// The returned bool reports whether the variable was created.
func (s *SQLiteStore) Set(ctx context.Context, name, value string) (*Variable, bool, error) {
	existing, err := s.GetByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		v, err := s.Add(ctx, name, value)
		return v, err == nil, err
	}
	if err != nil {
		return nil, false, err
	}
	v, err := s.Update(ctx, existing.ID, "", value)
	return v, false, err
}

// Delete removes the variable with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return errNotOpened
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM variables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete variable: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete variable: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// GetByName retrieves a variable by its exact name.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*Variable, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	return s.get(ctx, `WHERE name = ?`, strings.TrimSpace(name))
}

// GetAll returns every variable ordered by name.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]Variable, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, value, created_at, updated_at FROM variables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	defer rows.Close()

	var vars []Variable
	for rows.Next() {
		v, err := scanVariable(rows)
		if err != nil {
			return nil, err
		}
		vars = append(vars, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	return vars, nil
}

func (s *SQLiteStore) get(ctx context.Context, where string, arg string) (*Variable, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, value, created_at, updated_at FROM variables `+where, arg)
	v, err := scanVariable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, arg)
	}
	return v, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVariable(r rowScanner) (*Variable, error) {
	var v Variable
	var created, updated string
	if err := r.Scan(&v.ID, &v.Name, &v.Value, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read variable: %w", err)
	}
	var err error
	if v.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if v.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &v, nil
}

func wrapWriteError(op, name string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	return fmt.Errorf("failed to %s variable: %w", op, err)
}
