// Package automation provides time-triggered automations, scheduled
// lighting events, and the background poller that fires them.
//
// # Architecture
//
//	┌──────────────┐   tick    ┌──────────────────────┐
//	│    Poller    │──────────▶│ Repository (SQLite)  │
//	│  (poller.go) │           │ automations +        │
//	│              │           │ scheduled_events     │
//	└──────┬───────┘           └──────────────────────┘
//	       │ fire
//	       ▼
//	┌──────────────┐   ┌──────────────────────┐
//	│ WebSocket hub│   │ MQTT bus (optional)  │
//	│ broadcast    │   │ applight/events/...  │
//	└──────────────┘   └──────────────────────┘
//
// The poller runs on a fixed cadence with an injected clock. Each tick
// computes the half-open time-of-day window since the previous tick and
// fires every active automation and scheduled event whose time was
// crossed, exactly once per crossing. The window wraps across midnight.
//
// Automations are descriptive rules: firing one broadcasts its action
// text, it does not dispatch commands to device state. Scheduled events
// carry a strip mode that is additionally published per strip on the
// MQTT bus when the bus is enabled.
package automation
