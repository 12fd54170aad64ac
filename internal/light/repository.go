package light

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for light persistence operations.
type Repository interface {
	// GetByID retrieves a light by its identifier.
	// Returns ErrNotFound if the light does not exist.
	GetByID(ctx context.Context, id int64) (*Light, error)

	// List retrieves all lights ordered by id.
	List(ctx context.Context) ([]Light, error)

	// Create inserts a new light and assigns its ID.
	Create(ctx context.Context, l *Light) error

	// Update modifies an existing light row and stamps last_command_time.
	// Returns ErrNotFound if the light does not exist.
	Update(ctx context.Context, l *Light) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a light by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Light, error) {
	query := `
		SELECT id, name, state, brightness, color, last_command_time
		FROM lights
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	l, err := scanLight(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying light by id: %w", err)
	}
	return l, nil
}

// List retrieves all lights ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Light, error) {
	query := `
		SELECT id, name, state, brightness, color, last_command_time
		FROM lights
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying lights: %w", err)
	}
	defer rows.Close()

	var lights []Light
	for rows.Next() {
		l, err := scanLight(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning light: %w", err)
		}
		lights = append(lights, *l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lights: %w", err)
	}

	return lights, nil
}

// Create inserts a new light and assigns its ID.
func (r *SQLiteRepository) Create(ctx context.Context, l *Light) error {
	if l.Name == "" {
		return ErrInvalidName
	}
	if l.Brightness == 0 {
		l.Brightness = 100
	}
	l.LastCommandTime = time.Now().UTC()

	query := `
		INSERT INTO lights (name, state, brightness, color, last_command_time)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		l.Name,
		boolToInt(l.State),
		l.Brightness,
		nullableString(l.Color),
		l.LastCommandTime.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting light: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading light id: %w", err)
	}
	l.ID = id

	return nil
}

// Update modifies an existing light row and stamps last_command_time.
func (r *SQLiteRepository) Update(ctx context.Context, l *Light) error {
	if l.Name == "" {
		return ErrInvalidName
	}
	l.LastCommandTime = time.Now().UTC()

	query := `
		UPDATE lights
		SET name = ?, state = ?, brightness = ?, color = ?, last_command_time = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		l.Name,
		boolToInt(l.State),
		l.Brightness,
		nullableString(l.Color),
		l.LastCommandTime.Format(time.RFC3339),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating light: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLight scans a row or rows result into a Light.
func scanLight(scanner rowScanner) (*Light, error) {
	var l Light
	var state int
	var color sql.NullString
	var lastCommandTime string

	err := scanner.Scan(
		&l.ID,
		&l.Name,
		&state,
		&l.Brightness,
		&color,
		&lastCommandTime,
	)
	if err != nil {
		return nil, err
	}

	l.State = state != 0
	if color.Valid {
		l.Color = &color.String
	}

	l.LastCommandTime, err = time.Parse(time.RFC3339, lastCommandTime)
	if err != nil {
		return nil, fmt.Errorf("parsing last_command_time: %w", err)
	}

	return &l, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
