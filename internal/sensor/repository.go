package sensor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for sensor persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a sensor by its identifier.
	// Returns ErrNotFound if the sensor does not exist.
	GetByID(ctx context.Context, id int64) (*Sensor, error)

	// List retrieves all sensors ordered by id.
	List(ctx context.Context) ([]Sensor, error)

	// Create inserts a new sensor and assigns its ID.
	Create(ctx context.Context, s *Sensor) error

	// Update modifies an existing sensor row in full.
	// Returns ErrNotFound if the sensor does not exist.
	Update(ctx context.Context, s *Sensor) error

	// UpdateValue overwrites last_value and stamps updated_at.
	// This is the hot path for device pushes.
	// Returns ErrNotFound if the sensor does not exist.
	UpdateValue(ctx context.Context, id int64, value float64) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a sensor by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Sensor, error) {
	query := `
		SELECT id, sensor_type, model, location, last_value, calibration_value, updated_at
		FROM sensors
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	s, err := scanSensor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying sensor by id: %w", err)
	}
	return s, nil
}

// List retrieves all sensors ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Sensor, error) {
	query := `
		SELECT id, sensor_type, model, location, last_value, calibration_value, updated_at
		FROM sensors
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	var sensors []Sensor
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor: %w", err)
		}
		sensors = append(sensors, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensors: %w", err)
	}

	return sensors, nil
}

// Create inserts a new sensor and assigns its ID.
func (r *SQLiteRepository) Create(ctx context.Context, s *Sensor) error {
	if s.SensorType == "" {
		return ErrInvalidType
	}
	if s.CalibrationValue == 0 {
		s.CalibrationValue = 1.0
	}
	s.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO sensors (sensor_type, model, location, last_value, calibration_value, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		s.SensorType,
		nullableString(s.Model),
		nullableString(s.Location),
		nullableFloat(s.LastValue),
		s.CalibrationValue,
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting sensor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading sensor id: %w", err)
	}
	s.ID = id

	return nil
}

// Update modifies an existing sensor row in full.
func (r *SQLiteRepository) Update(ctx context.Context, s *Sensor) error {
	if s.SensorType == "" {
		return ErrInvalidType
	}
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE sensors
		SET sensor_type = ?, model = ?, location = ?, last_value = ?,
		    calibration_value = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		s.SensorType,
		nullableString(s.Model),
		nullableString(s.Location),
		nullableFloat(s.LastValue),
		s.CalibrationValue,
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sensor: %w", err)
	}

	return checkAffected(result)
}

// UpdateValue overwrites last_value and stamps updated_at.
func (r *SQLiteRepository) UpdateValue(ctx context.Context, id int64, value float64) error {
	query := `
		UPDATE sensors
		SET last_value = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		value,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating sensor value: %w", err)
	}

	return checkAffected(result)
}

// checkAffected maps a zero-row UPDATE to ErrNotFound.
func checkAffected(result sql.Result) error {
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

// scanSensor scans a row or rows result into a Sensor.
func scanSensor(scanner rowScanner) (*Sensor, error) {
	var s Sensor
	var model, location sql.NullString
	var lastValue sql.NullFloat64
	var updatedAt string

	err := scanner.Scan(
		&s.ID,
		&s.SensorType,
		&model,
		&location,
		&lastValue,
		&s.CalibrationValue,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if model.Valid {
		s.Model = &model.String
	}
	if location.Valid {
		s.Location = &location.String
	}
	if lastValue.Valid {
		s.LastValue = &lastValue.Float64
	}

	s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &s, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableFloat returns a sql.NullFloat64 for optional float pointers.
func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
