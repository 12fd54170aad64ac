package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/applight/applight-core/internal/sensor"
)

// seedSensor inserts a sensor directly through the repository and returns it.
func seedSensor(t *testing.T, s *Server, lastValue float64) *sensor.Sensor {
	t.Helper()

	sns := &sensor.Sensor{SensorType: "temperature", LastValue: &lastValue}
	if err := s.sensors.Create(context.Background(), sns); err != nil {
		t.Fatalf("failed to seed sensor: %v", err)
	}
	return sns
}

func TestSensorIngest_UpdateThenFetch(t *testing.T) {
	s, router := newTestServer(t)
	seeded := seedSensor(t, s, 20.0)
	before := time.Now().UTC().Add(-time.Second)

	status, body := doJSON(t, router, http.MethodPost, "/api/sensors/update", map[string]any{
		"id":         seeded.ID,
		"last_value": 23.5,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	if body["status"] != "success" {
		t.Errorf("expected status success, got %v", body["status"])
	}
	if body["message"] != "Sensor updated successfully" {
		t.Errorf("unexpected message: %v", body["message"])
	}

	status, body = doJSON(t, router, http.MethodGet, "/api/sensors/1", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	sns, ok := body["sensor"].(map[string]any)
	if !ok {
		t.Fatalf("expected sensor object in response, got %v", body)
	}
	if sns["last_value"] != 23.5 {
		t.Errorf("expected last_value 23.5, got %v", sns["last_value"])
	}

	updatedAt, err := time.Parse(time.RFC3339, sns["updated_at"].(string))
	if err != nil {
		t.Fatalf("unparseable updated_at: %v", err)
	}
	if updatedAt.Before(before) {
		t.Errorf("updated_at %v is earlier than the update time %v", updatedAt, before)
	}
}

func TestSensorIngest_UnknownSensor(t *testing.T) {
	_, router := newTestServer(t)

	status, body := doJSON(t, router, http.MethodPost, "/api/sensors/update", map[string]any{
		"id":         999,
		"last_value": 1.0,
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["status"] != "error" || body["message"] != "Sensor not found" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestSensorIngest_BadBody(t *testing.T) {
	s, router := newTestServer(t)
	seeded := seedSensor(t, s, 20.0)

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"missing last_value", map[string]any{"id": seeded.ID}, http.StatusBadRequest, "Invalid sensor data"},
		{"missing id", map[string]any{"last_value": 5.0}, http.StatusNotFound, "Sensor not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, router, http.MethodPost, "/api/sensors/update", tt.body)
			if status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
			if body["message"] != tt.message {
				t.Errorf("expected message %q, got %v", tt.message, body["message"])
			}
		})
	}

	// The seeded value must be untouched after the rejected updates
	sns, err := s.sensors.GetByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("failed to re-fetch sensor: %v", err)
	}
	if sns.LastValue == nil || *sns.LastValue != 20.0 {
		t.Errorf("rejected update mutated last_value: %v", sns.LastValue)
	}
}

func TestSensorFetch_PathParamBinds(t *testing.T) {
	s, router := newTestServer(t)
	first := seedSensor(t, s, 1.0)
	second := seedSensor(t, s, 2.0)

	for _, seeded := range []*sensor.Sensor{first, second} {
		status, body := doJSON(t, router, http.MethodGet, "/api/sensors/"+strconv.FormatInt(seeded.ID, 10), nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200 for sensor %d, got %d", seeded.ID, status)
		}
		sns := body["sensor"].(map[string]any)
		if int64(sns["id"].(float64)) != seeded.ID {
			t.Errorf("expected id %d, got %v", seeded.ID, sns["id"])
		}
	}

	status, body := doJSON(t, router, http.MethodGet, "/api/sensors/404", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["message"] != "Sensor not found." {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestCommandIngest(t *testing.T) {
	s, router := newTestServer(t)
	seeded := seedSensor(t, s, 20.0)

	t.Run("empty body is rejected", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/command", map[string]any{})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		if body["status"] != "error" || body["message"] != "Invalid command data" {
			t.Errorf("unexpected body: %v", body)
		}

		// Store unchanged
		sns, err := s.sensors.GetByID(context.Background(), seeded.ID)
		if err != nil {
			t.Fatalf("failed to re-fetch sensor: %v", err)
		}
		if sns.LastValue == nil || *sns.LastValue != 20.0 {
			t.Errorf("rejected command mutated the store: %v", sns.LastValue)
		}
	})

	t.Run("command is echoed", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/command", map[string]any{
			"command": "toggle_strip_1",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if body["command_received"] != "toggle_strip_1" {
			t.Errorf("expected command echoed back, got %v", body["command_received"])
		}
		if body["message"] != "Command processed" {
			t.Errorf("unexpected message: %v", body["message"])
		}
	})
}

func TestMotionIngest(t *testing.T) {
	_, router := newTestServer(t)

	t.Run("missing motion_detected is rejected", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/motion/update", map[string]any{
			"timestamp": "2026-03-01T12:00:00Z",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		if body["message"] != "Invalid data" {
			t.Errorf("unexpected message: %v", body["message"])
		}
	})

	t.Run("motion event is echoed", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/motion/update", map[string]any{
			"motion_detected": true,
			"timestamp":       "2026-03-01T12:00:00Z",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if body["motion"] != true {
			t.Errorf("expected motion true, got %v", body["motion"])
		}
		if body["timestamp"] != "2026-03-01T12:00:00Z" {
			t.Errorf("expected timestamp echoed, got %v", body["timestamp"])
		}
	})
}

func TestLEDIngest(t *testing.T) {
	_, router := newTestServer(t)

	t.Run("missing state is rejected", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/led/update", map[string]any{})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", status)
		}
		if body["message"] != "Invalid data for LED update" {
			t.Errorf("unexpected message: %v", body["message"])
		}
	})

	t.Run("state is echoed", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/led/update", map[string]any{
			"state": "rainbow",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if body["state"] != "rainbow" {
			t.Errorf("expected state echoed, got %v", body["state"])
		}
	})

	t.Run("explicit null state is accepted", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/led/update", map[string]any{
			"state": nil,
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200 for present-but-null state, got %d", status)
		}
		if state, present := body["state"]; !present || state != nil {
			t.Errorf("expected null state echoed, got %v (present=%v)", state, present)
		}
	})
}
