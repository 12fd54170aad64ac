package automation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EventRepository defines the interface for scheduled event persistence.
type EventRepository interface {
	// GetByID retrieves a scheduled event by its identifier.
	// Returns ErrEventNotFound if the event does not exist.
	GetByID(ctx context.Context, id int64) (*ScheduledEvent, error)

	// List retrieves all scheduled events ordered by id.
	List(ctx context.Context) ([]ScheduledEvent, error)

	// Create inserts a new scheduled event and assigns its ID.
	Create(ctx context.Context, e *ScheduledEvent) error

	// Delete removes a scheduled event.
	// Returns ErrEventNotFound if the event does not exist.
	Delete(ctx context.Context, id int64) error
}

// SQLiteEventRepository implements EventRepository using SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewSQLiteEventRepository creates a new SQLite-backed event repository.
func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

// GetByID retrieves a scheduled event by its identifier.
func (r *SQLiteEventRepository) GetByID(ctx context.Context, id int64) (*ScheduledEvent, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, time, mode, strips, created_at FROM scheduled_events WHERE id = ?", id)

	e, err := scanScheduledEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("querying scheduled event by id: %w", err)
	}
	return e, nil
}

// List retrieves all scheduled events ordered by id.
func (r *SQLiteEventRepository) List(ctx context.Context) ([]ScheduledEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, time, mode, strips, created_at FROM scheduled_events ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying scheduled events: %w", err)
	}
	defer rows.Close()

	var events []ScheduledEvent
	for rows.Next() {
		e, err := scanScheduledEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scheduled event: %w", err)
		}
		events = append(events, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled events: %w", err)
	}

	return events, nil
}

// Create inserts a new scheduled event and assigns its ID.
func (r *SQLiteEventRepository) Create(ctx context.Context, e *ScheduledEvent) error {
	e.CreatedAt = time.Now().UTC()

	var strips sql.NullString
	if len(e.Strips) > 0 {
		strips = sql.NullString{String: FormatStrips(e.Strips), Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO scheduled_events (time, mode, strips, created_at) VALUES (?, ?, ?, ?)",
		nullableTimeOfDay(e.Time),
		nullableString(e.Mode),
		strips,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting scheduled event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading scheduled event id: %w", err)
	}
	e.ID = id

	return nil
}

// Delete removes a scheduled event.
func (r *SQLiteEventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM scheduled_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting scheduled event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// scanScheduledEvent scans a row or rows result into a ScheduledEvent.
func scanScheduledEvent(scanner rowScanner) (*ScheduledEvent, error) {
	var e ScheduledEvent
	var eventTime, mode, strips sql.NullString
	var createdAt string

	if err := scanner.Scan(&e.ID, &eventTime, &mode, &strips, &createdAt); err != nil {
		return nil, err
	}

	if eventTime.Valid {
		t, err := ParseTimeOfDay(eventTime.String)
		if err != nil {
			return nil, fmt.Errorf("parsing event time: %w", err)
		}
		e.Time = &t
	}
	if mode.Valid {
		e.Mode = &mode.String
	}
	if strips.Valid {
		parsed, err := ParseStrips(strips.String)
		if err != nil {
			return nil, fmt.Errorf("parsing strips: %w", err)
		}
		e.Strips = parsed
	}

	var err error
	e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &e, nil
}
