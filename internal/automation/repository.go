package automation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository defines the interface for automation persistence operations.
type Repository interface {
	// GetByID retrieves an automation by its identifier.
	// Returns ErrNotFound if the automation does not exist.
	GetByID(ctx context.Context, id int64) (*Automation, error)

	// List retrieves all automations ordered by id.
	List(ctx context.Context) ([]Automation, error)

	// ListScheduled retrieves active automations that have a scheduled time.
	// This is the poller's scan set.
	ListScheduled(ctx context.Context) ([]Automation, error)

	// Create inserts a new automation and assigns its ID.
	Create(ctx context.Context, a *Automation) error

	// Update modifies an existing automation row.
	// Returns ErrNotFound if the automation does not exist.
	Update(ctx context.Context, a *Automation) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves an automation by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Automation, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, trigger, action, active, scheduled_time FROM automations WHERE id = ?", id)

	a, err := scanAutomation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying automation by id: %w", err)
	}
	return a, nil
}

// List retrieves all automations ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Automation, error) {
	return r.queryAutomations(ctx,
		"SELECT id, trigger, action, active, scheduled_time FROM automations ORDER BY id")
}

// ListScheduled retrieves active automations that have a scheduled time.
func (r *SQLiteRepository) ListScheduled(ctx context.Context) ([]Automation, error) {
	return r.queryAutomations(ctx, `
		SELECT id, trigger, action, active, scheduled_time
		FROM automations
		WHERE active = 1 AND scheduled_time IS NOT NULL
		ORDER BY id`)
}

// Create inserts a new automation and assigns its ID.
func (r *SQLiteRepository) Create(ctx context.Context, a *Automation) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO automations (trigger, action, active, scheduled_time) VALUES (?, ?, ?, ?)",
		nullableString(a.Trigger),
		nullableString(a.Action),
		boolToInt(a.Active),
		nullableTimeOfDay(a.ScheduledTime),
	)
	if err != nil {
		return fmt.Errorf("inserting automation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading automation id: %w", err)
	}
	a.ID = id

	return nil
}

// Update modifies an existing automation row.
func (r *SQLiteRepository) Update(ctx context.Context, a *Automation) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE automations SET trigger = ?, action = ?, active = ?, scheduled_time = ? WHERE id = ?",
		nullableString(a.Trigger),
		nullableString(a.Action),
		boolToInt(a.Active),
		nullableTimeOfDay(a.ScheduledTime),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating automation: %w", err)
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

// queryAutomations executes a query and returns a slice of automations.
func (r *SQLiteRepository) queryAutomations(ctx context.Context, query string, args ...any) ([]Automation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying automations: %w", err)
	}
	defer rows.Close()

	var automations []Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning automation: %w", err)
		}
		automations = append(automations, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating automations: %w", err)
	}

	return automations, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAutomation scans a row or rows result into an Automation.
func scanAutomation(scanner rowScanner) (*Automation, error) {
	var a Automation
	var trigger, action, scheduledTime sql.NullString
	var active int

	if err := scanner.Scan(&a.ID, &trigger, &action, &active, &scheduledTime); err != nil {
		return nil, err
	}

	a.Active = active != 0
	if trigger.Valid {
		a.Trigger = &trigger.String
	}
	if action.Valid {
		a.Action = &action.String
	}
	if scheduledTime.Valid {
		t, err := ParseTimeOfDay(scheduledTime.String)
		if err != nil {
			return nil, fmt.Errorf("parsing scheduled_time: %w", err)
		}
		a.ScheduledTime = &t
	}

	return &a, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableTimeOfDay returns a sql.NullString holding "HH:MM:SS".
func nullableTimeOfDay(t *TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
