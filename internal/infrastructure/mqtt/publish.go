package mqtt

import (
	"fmt"
)

// maxPayloadSize caps message payloads at 1MB, in line with typical
// broker limits. Device payloads here are tiny JSON documents; anything
// near this size is a bug upstream.
const maxPayloadSize = 1 << 20

// Publish sends a message to the given topic.
//
// qos 0 is fire-and-forget, 1 guarantees delivery with possible
// duplicates, 2 guarantees exactly-once. Retained messages are stored
// by the broker and handed to new subscribers immediately; use them for
// state topics like applight/led/state, never for commands or events.
//
//	topic := mqtt.Topics{}.LEDState()
//	err := client.Publish(topic, []byte(`{"state":"rainbow"}`), 1, true)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message at the configured
// default QoS. Used for state topics.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
