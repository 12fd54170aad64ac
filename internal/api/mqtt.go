package api

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/applight/applight-core/internal/infrastructure/mqtt"
	"github.com/applight/applight-core/internal/sensor"
)

// ingestTimeout bounds the store write for a bus-delivered reading.
const ingestTimeout = 5 * time.Second

// subscribeSensorIngest subscribes to sensor value topics on the device bus
// and writes readings into the store, mirroring POST /api/sensors/update.
//
// Topic layout: applight/sensors/{id}/value. The payload is either a bare
// JSON number or an object with a last_value field; firmware versions differ.
func (s *Server) subscribeSensorIngest() error {
	if s.mqtt == nil {
		return nil // HTTP-only deployment
	}

	topic := mqtt.Topics{}.AllSensorValues()
	s.logger.Info("subscribing to sensor ingest topics", "topic", topic)

	return s.mqtt.Subscribe(topic, 1, func(t string, payload []byte) error {
		id, ok := sensorIDFromTopic(t)
		if !ok {
			s.logger.Warn("unparseable sensor topic", "topic", t)
			return nil
		}

		value, err := parseSensorPayload(payload)
		if err != nil {
			s.logger.Warn("unparseable sensor payload", "topic", t, "error", err)
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()

		if err := s.sensors.UpdateValue(ctx, id, value); err != nil {
			if errors.Is(err, sensor.ErrNotFound) {
				s.logger.Warn("reading for unknown sensor", "sensor_id", id)
				return nil
			}
			s.logger.Error("bus sensor ingest failed", "sensor_id", id, "error", err)
			return nil
		}

		s.logger.Debug("sensor reading ingested from bus", "sensor_id", id, "value", value)
		return nil
	})
}

// sensorIDFromTopic extracts the sensor id from applight/sensors/{id}/value.
func sensorIDFromTopic(topic string) (int64, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[1] != "sensors" || parts[3] != "value" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseSensorPayload accepts a bare JSON number or {"last_value": n}.
func parseSensorPayload(payload []byte) (float64, error) {
	var value float64
	if err := json.Unmarshal(payload, &value); err == nil {
		return value, nil
	}

	var obj struct {
		LastValue *float64 `json:"last_value"`
	}
	if err := json.Unmarshal(payload, &obj); err != nil {
		return 0, err
	}
	if obj.LastValue == nil {
		return 0, errors.New("payload missing last_value")
	}
	return *obj.LastValue, nil
}
