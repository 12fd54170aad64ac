package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Logger defines the logging interface used by the Poller.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// WSHub is the interface for broadcasting WebSocket events.
type WSHub interface {
	// Broadcast sends an event to all connected clients.
	Broadcast(event string, payload any)
}

// MQTTClient is the interface for publishing events to the device bus.
type MQTTClient interface {
	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Poller scans automations and scheduled events on a fixed cadence and
// fires the ones whose time of day was crossed since the previous tick.
//
// Matching is interval-crossing, not exact-equality: each tick computes
// the half-open window [previousTick, thisTick) of wall-clock time and
// fires every entry whose time falls inside it. The window wraps across
// midnight, so a 23:59:30 tick followed by a 00:00:30 tick still catches
// a midnight schedule. Each crossing fires exactly once regardless of
// poll cadence.
//
// The clock is injected for deterministic testing; ticks run on a single
// goroutine so two scans never execute concurrently against the store.
type Poller struct {
	automations Repository
	events      EventRepository
	hub         WSHub
	mqtt        MQTTClient
	logger      Logger

	interval time.Duration
	now      func() time.Time
	loc      *time.Location
}

// NewPoller creates a poller over the given repositories.
// The hub may be nil (no broadcast); interval must be positive.
func NewPoller(automations Repository, events EventRepository, hub WSHub, interval time.Duration) *Poller {
	return &Poller{
		automations: automations,
		events:      events,
		hub:         hub,
		logger:      noopLogger{},
		interval:    interval,
		now:         time.Now,
		loc:         time.Local,
	}
}

// SetLogger sets the logger for the poller.
func (p *Poller) SetLogger(logger Logger) {
	p.logger = logger
}

// SetMQTT sets an optional MQTT client; fired events are mirrored to the
// device bus when set.
func (p *Poller) SetMQTT(client MQTTClient) {
	p.mqtt = client
}

// SetClock overrides the wall clock. Tests inject a fake clock here.
func (p *Poller) SetClock(now func() time.Time) {
	p.now = now
}

// SetLocation sets the timezone schedules are evaluated in.
func (p *Poller) SetLocation(loc *time.Location) {
	p.loc = loc
}

// Run executes the poll loop until the context is cancelled.
// The first tick's window starts at the time Run is called, so schedules
// already in the past today do not fire retroactively on startup.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := TimeOfDayAt(p.now(), p.loc)
	p.logger.Info("automation poller started",
		"interval", p.interval.String(),
		"timezone", p.loc.String(),
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("automation poller stopped")
			return
		case <-ticker.C:
			current := TimeOfDayAt(p.now(), p.loc)
			p.tick(ctx, last, current)
			last = current
		}
	}
}

// tick fires everything scheduled inside the half-open window [start, end).
func (p *Poller) tick(ctx context.Context, start, end TimeOfDay) {
	if start == end {
		return
	}

	p.scanAutomations(ctx, start, end)
	p.scanScheduledEvents(ctx, start, end)
}

func (p *Poller) scanAutomations(ctx context.Context, start, end TimeOfDay) {
	automations, err := p.automations.ListScheduled(ctx)
	if err != nil {
		p.logger.Error("automation scan failed", "error", err)
		return
	}

	for i := range automations {
		a := &automations[i]
		if a.ScheduledTime == nil || !inWindow(*a.ScheduledTime, start, end) {
			continue
		}
		p.fireAutomation(a)
	}
}

func (p *Poller) fireAutomation(a *Automation) {
	action := ""
	if a.Action != nil {
		action = *a.Action
	}

	event := TriggerEvent{
		ID:          a.ID,
		Action:      action,
		TriggeredAt: p.now().In(p.loc),
	}

	p.logger.Info("automation triggered",
		"event_id", GenerateEventID(),
		"automation_id", a.ID,
		"action", action,
		"scheduled_time", a.ScheduledTime.String(),
	)

	if p.hub != nil {
		p.hub.Broadcast("automation_triggered", event)
	}

	if p.mqtt != nil {
		if err := p.publishJSON("applight/events/automation", event, false); err != nil {
			p.logger.Warn("automation event publish failed", "automation_id", a.ID, "error", err)
		}
	}
}

func (p *Poller) scanScheduledEvents(ctx context.Context, start, end TimeOfDay) {
	events, err := p.events.List(ctx)
	if err != nil {
		p.logger.Error("scheduled event scan failed", "error", err)
		return
	}

	for i := range events {
		e := &events[i]
		if e.Time == nil || !inWindow(*e.Time, start, end) {
			continue
		}
		p.fireScheduledEvent(e)
	}
}

func (p *Poller) fireScheduledEvent(e *ScheduledEvent) {
	mode := ""
	if e.Mode != nil {
		mode = *e.Mode
	}

	trigger := ScheduledEventTrigger{
		ID:          e.ID,
		Mode:        mode,
		Strips:      e.Strips,
		TriggeredAt: p.now().In(p.loc),
	}

	p.logger.Info("scheduled event fired",
		"event_id", GenerateEventID(),
		"scheduled_event_id", e.ID,
		"mode", mode,
		"strips", FormatStrips(e.Strips),
	)

	if p.hub != nil {
		p.hub.Broadcast("scheduled_event", trigger)
	}

	if p.mqtt != nil {
		if err := p.publishJSON("applight/events/scheduled", trigger, false); err != nil {
			p.logger.Warn("scheduled event publish failed", "scheduled_event_id", e.ID, "error", err)
		}
		for _, strip := range e.Strips {
			topic := fmt.Sprintf("applight/strips/%d/mode", strip)
			if err := p.mqtt.Publish(topic, []byte(mode), 1, true); err != nil {
				p.logger.Warn("strip mode publish failed", "strip_id", strip, "error", err)
			}
		}
	}
}

func (p *Poller) publishJSON(topic string, payload any, retained bool) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	return p.mqtt.Publish(topic, data, 1, retained)
}

// inWindow reports whether t falls inside the half-open window [start, end),
// wrapping across midnight when start > end. An empty window (start == end)
// matches nothing.
func inWindow(t, start, end TimeOfDay) bool {
	if start == end {
		return false
	}
	if start < end {
		return t >= start && t < end
	}
	return t >= start || t < end
}
