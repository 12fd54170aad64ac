package api

import "testing"

func TestSensorIDFromTopic(t *testing.T) {
	tests := []struct {
		topic  string
		wantID int64
		wantOK bool
	}{
		{"applight/sensors/1/value", 1, true},
		{"applight/sensors/42/value", 42, true},
		{"applight/sensors/abc/value", 0, false},
		{"applight/sensors/1/state", 0, false},
		{"applight/lights/1/value", 0, false},
		{"applight/sensors/1", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			id, ok := sensorIDFromTopic(tt.topic)
			if ok != tt.wantOK {
				t.Fatalf("sensorIDFromTopic(%q) ok = %v, want %v", tt.topic, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("sensorIDFromTopic(%q) id = %d, want %d", tt.topic, id, tt.wantID)
			}
		})
	}
}

func TestParseSensorPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
		wantErr bool
	}{
		{"bare number", "23.5", 23.5, false},
		{"bare integer", "20", 20, false},
		{"object form", `{"last_value": 19.25}`, 19.25, false},
		{"object missing field", `{"value": 1}`, 0, true},
		{"not json", "warm", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSensorPayload([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSensorPayload(%q) error = %v, wantErr %v", tt.payload, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseSensorPayload(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}
