package sensor

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the sensors table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE sensors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sensor_type TEXT NOT NULL,
			model TEXT,
			location TEXT,
			last_value REAL,
			calibration_value REAL NOT NULL DEFAULT 1.0,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// testSensor creates a sensor for testing.
func testSensor(sensorType string) *Sensor {
	model := "DHT22"
	location := "living room"
	return &Sensor{
		SensorType: sensorType,
		Model:      &model,
		Location:   &location,
	}
}

func TestSQLiteRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("creates sensor and assigns id", func(t *testing.T) {
		s := testSensor("temperature")

		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if s.ID == 0 {
			t.Error("Create() did not assign an ID")
		}

		got, err := repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.SensorType != "temperature" {
			t.Errorf("SensorType = %q, want %q", got.SensorType, "temperature")
		}
		if got.Model == nil || *got.Model != "DHT22" {
			t.Errorf("Model = %v, want DHT22", got.Model)
		}
		if got.LastValue != nil {
			t.Errorf("LastValue = %v, want nil before first push", got.LastValue)
		}
	})

	t.Run("defaults calibration to 1.0", func(t *testing.T) {
		s := testSensor("humidity")

		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.CalibrationValue != 1.0 {
			t.Errorf("CalibrationValue = %v, want 1.0", got.CalibrationValue)
		}
	})

	t.Run("rejects empty sensor type", func(t *testing.T) {
		err := repo.Create(ctx, &Sensor{})
		if !errors.Is(err, ErrInvalidType) {
			t.Errorf("Create() error = %v, want ErrInvalidType", err)
		}
	})
}

func TestSQLiteRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		sensors, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(sensors) != 0 {
			t.Errorf("List() returned %d sensors, want 0", len(sensors))
		}
	})

	t.Run("returns all sensors ordered by id", func(t *testing.T) {
		for _, st := range []string{"temperature", "humidity", "motion"} {
			if err := repo.Create(ctx, testSensor(st)); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		sensors, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(sensors) != 3 {
			t.Fatalf("List() returned %d sensors, want 3", len(sensors))
		}
		for i := 1; i < len(sensors); i++ {
			if sensors[i].ID <= sensors[i-1].ID {
				t.Errorf("List() not ordered by id: %d after %d", sensors[i].ID, sensors[i-1].ID)
			}
		}
	})
}

func TestSQLiteRepository_UpdateValue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	s := testSensor("temperature")
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("overwrites value and stamps updated_at", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Second)

		if err := repo.UpdateValue(ctx, s.ID, 23.5); err != nil {
			t.Fatalf("UpdateValue() error = %v", err)
		}

		got, err := repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.LastValue == nil || *got.LastValue != 23.5 {
			t.Errorf("LastValue = %v, want 23.5", got.LastValue)
		}
		if got.UpdatedAt.Before(before) {
			t.Errorf("UpdatedAt = %v, want no earlier than %v", got.UpdatedAt, before)
		}
	})

	t.Run("second push overwrites first", func(t *testing.T) {
		if err := repo.UpdateValue(ctx, s.ID, 24.1); err != nil {
			t.Fatalf("UpdateValue() error = %v", err)
		}

		got, err := repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.LastValue == nil || *got.LastValue != 24.1 {
			t.Errorf("LastValue = %v, want 24.1", got.LastValue)
		}
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		err := repo.UpdateValue(ctx, 999, 1.0)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateValue() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	s := testSensor("temperature")
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("updates all fields", func(t *testing.T) {
		location := "kitchen"
		s.Location = &location
		s.CalibrationValue = 0.98

		if err := repo.Update(ctx, s); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, err := repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Location == nil || *got.Location != "kitchen" {
			t.Errorf("Location = %v, want kitchen", got.Location)
		}
		if got.CalibrationValue != 0.98 {
			t.Errorf("CalibrationValue = %v, want 0.98", got.CalibrationValue)
		}
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		missing := testSensor("humidity")
		missing.ID = 999

		err := repo.Update(ctx, missing)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSensor_Snapshot(t *testing.T) {
	value := 19.5
	now := time.Now().UTC()
	s := &Sensor{ID: 7, SensorType: "temperature", LastValue: &value, UpdatedAt: now}

	snap := s.Snapshot()
	if snap.ID != 7 {
		t.Errorf("ID = %d, want 7", snap.ID)
	}
	if snap.LastValue == nil || *snap.LastValue != 19.5 {
		t.Errorf("LastValue = %v, want 19.5", snap.LastValue)
	}
	if !snap.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", snap.UpdatedAt, now)
	}
}
