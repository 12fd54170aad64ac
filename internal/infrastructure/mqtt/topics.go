package mqtt

import "fmt"

// Topic prefixes for the AppLight device bus.
//
// All topics use the flat scheme: applight/{category}/...
const (
	// TopicPrefix is the base for all AppLight topics.
	TopicPrefix = "applight"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "applight/system"

	// TopicPrefixEvents is the base for core-emitted event topics.
	TopicPrefixEvents = "applight/events"
)

// Topics provides builders for AppLight MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	valueTopic := topics.SensorValue(3)
//	// Returns: "applight/sensors/3/value"
type Topics struct{}

// SensorValue returns the topic a device publishes sensor readings to.
//
// Example: applight/sensors/3/value
func (Topics) SensorValue(sensorID int64) string {
	return fmt.Sprintf("%s/sensors/%d/value", TopicPrefix, sensorID)
}

// AllSensorValues returns a pattern matching all sensor value pushes.
//
// Pattern: applight/sensors/+/value
func (Topics) AllSensorValues() string {
	return fmt.Sprintf("%s/sensors/+/value", TopicPrefix)
}

// Commands returns the topic generic device commands are republished to.
//
// Example: applight/commands
func (Topics) Commands() string {
	return fmt.Sprintf("%s/commands", TopicPrefix)
}

// LEDState returns the retained topic for the last reported LED state.
//
// Example: applight/led/state
func (Topics) LEDState() string {
	return fmt.Sprintf("%s/led/state", TopicPrefix)
}

// StripMode returns the topic a scheduled event publishes strip modes to.
//
// Example: applight/strips/14/mode
func (Topics) StripMode(stripID int64) string {
	return fmt.Sprintf("%s/strips/%d/mode", TopicPrefix, stripID)
}

// AutomationTriggered returns the topic for automation trigger events.
//
// Example: applight/events/automation
func (Topics) AutomationTriggered() string {
	return fmt.Sprintf("%s/automation", TopicPrefixEvents)
}

// ScheduledEventFired returns the topic for scheduled event firings.
//
// Example: applight/events/scheduled
func (Topics) ScheduledEventFired() string {
	return fmt.Sprintf("%s/scheduled", TopicPrefixEvents)
}

// SystemStatus returns the system status topic (online/offline, LWT).
//
// Example: applight/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTopics returns a pattern matching all AppLight topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: applight/#
func (Topics) AllTopics() string {
	return "applight/#"
}
