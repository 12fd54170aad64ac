// Package mqtt provides MQTT client connectivity for AppLight Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// AppLight uses MQTT as an optional device bus alongside the HTTP
// ingestion API. Devices that speak MQTT push sensor values and
// commands directly to the broker; the Core mirrors events it emits
// (automation triggers, LED state, scheduled firings) back onto it.
// The bus is disabled by default and everything works without it.
//
//	Devices ↔ MQTT Broker ↔ AppLight Core ↔ HTTP/WebSocket clients
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all sensor value pushes
//	err = client.Subscribe(mqtt.Topics{}.AllSensorValues(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish retained LED state
//	client.PublishRetained(mqtt.Topics{}.LEDState(), []byte(`{"pattern":"rainbow"}`), 1)
package mqtt
