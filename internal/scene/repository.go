package scene

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository defines the interface for scenario persistence operations.
type Repository interface {
	// GetByID retrieves a scenario by its identifier.
	// Returns ErrNotFound if the scenario does not exist.
	GetByID(ctx context.Context, id int64) (*Scenario, error)

	// List retrieves all scenarios ordered by id.
	List(ctx context.Context) ([]Scenario, error)

	// Create inserts a new scenario and assigns its ID.
	Create(ctx context.Context, s *Scenario) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a scenario by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Scenario, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, settings FROM scenarios WHERE id = ?", id)

	s, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying scenario by id: %w", err)
	}
	return s, nil
}

// List retrieves all scenarios ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Scenario, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, settings FROM scenarios ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scenario: %w", err)
		}
		scenarios = append(scenarios, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenarios: %w", err)
	}

	return scenarios, nil
}

// Create inserts a new scenario and assigns its ID.
func (r *SQLiteRepository) Create(ctx context.Context, s *Scenario) error {
	if s.Name == "" {
		return ErrInvalidName
	}

	var settings sql.NullString
	if s.Settings != nil && *s.Settings != "" {
		settings = sql.NullString{String: *s.Settings, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO scenarios (name, settings) VALUES (?, ?)", s.Name, settings)
	if err != nil {
		return fmt.Errorf("inserting scenario: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading scenario id: %w", err)
	}
	s.ID = id

	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanScenario scans a row or rows result into a Scenario.
func scanScenario(scanner rowScanner) (*Scenario, error) {
	var s Scenario
	var settings sql.NullString

	if err := scanner.Scan(&s.ID, &s.Name, &settings); err != nil {
		return nil, err
	}
	if settings.Valid {
		s.Settings = &settings.String
	}

	return &s, nil
}
