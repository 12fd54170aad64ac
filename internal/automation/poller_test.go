package automation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeHub records broadcast events.
type fakeHub struct {
	mu     sync.Mutex
	events []string
	loads  []any
}

func (h *fakeHub) Broadcast(event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	h.loads = append(h.loads, payload)
}

func (h *fakeHub) count(event string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e == event {
			n++
		}
	}
	return n
}

// fakeMQTT records published topics.
type fakeMQTT struct {
	mu     sync.Mutex
	topics []string
}

func (m *fakeMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
	return nil
}

func (m *fakeMQTT) published(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.topics {
		if t == topic {
			n++
		}
	}
	return n
}

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) error = %v", s, err)
	}
	return tod
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name          string
		t, start, end string
		want          bool
	}{
		{"inside plain window", "07:30:00", "07:29:30", "07:30:30", true},
		{"at window start", "07:30:00", "07:30:00", "07:31:00", true},
		{"at window end", "07:31:00", "07:30:00", "07:31:00", false},
		{"before window", "07:29:00", "07:30:00", "07:31:00", false},
		{"after window", "07:32:00", "07:30:00", "07:31:00", false},
		{"midnight wrap catches pre-midnight", "23:59:45", "23:59:30", "00:00:30", true},
		{"midnight wrap catches post-midnight", "00:00:15", "23:59:30", "00:00:30", true},
		{"midnight wrap excludes midday", "12:00:00", "23:59:30", "00:00:30", false},
		{"exactly midnight inside wrap", "00:00:00", "23:59:30", "00:00:30", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inWindow(mustTime(t, tt.t), mustTime(t, tt.start), mustTime(t, tt.end))
			if got != tt.want {
				t.Errorf("inWindow(%s, %s, %s) = %v, want %v", tt.t, tt.start, tt.end, got, tt.want)
			}
		})
	}

	t.Run("empty window matches nothing", func(t *testing.T) {
		tod := mustTime(t, "07:30:00")
		if inWindow(tod, tod, tod) {
			t.Error("inWindow with start == end should match nothing")
		}
	})
}

// setupPoller builds a poller over real SQLite repositories and a fake hub.
func setupPoller(t *testing.T) (*Poller, *SQLiteRepository, *SQLiteEventRepository, *fakeHub) {
	t.Helper()

	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	events := NewSQLiteEventRepository(db)
	hub := &fakeHub{}

	p := NewPoller(repo, events, hub, time.Minute)
	return p, repo, events, hub
}

func TestPoller_FiresCrossedAutomation(t *testing.T) {
	p, repo, _, hub := setupPoller(t)
	ctx := context.Background()

	a := testAutomation(t, "07:30:00")
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p.tick(ctx, mustTime(t, "07:29:30"), mustTime(t, "07:30:30"))

	if got := hub.count("automation_triggered"); got != 1 {
		t.Fatalf("broadcast %d automation_triggered events, want 1", got)
	}

	ev, ok := hub.loads[0].(TriggerEvent)
	if !ok {
		t.Fatalf("payload type = %T, want TriggerEvent", hub.loads[0])
	}
	if ev.ID != a.ID {
		t.Errorf("event ID = %d, want %d", ev.ID, a.ID)
	}
	if ev.Action != "turn on hallway light" {
		t.Errorf("event Action = %q, want the automation action", ev.Action)
	}
	if ev.TriggeredAt.IsZero() {
		t.Error("TriggeredAt not set")
	}
}

func TestPoller_FiresOncePerCrossing(t *testing.T) {
	p, repo, _, hub := setupPoller(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testAutomation(t, "07:30:00")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Consecutive half-open windows: only one contains 07:30:00.
	p.tick(ctx, mustTime(t, "07:28:30"), mustTime(t, "07:29:30"))
	p.tick(ctx, mustTime(t, "07:29:30"), mustTime(t, "07:30:30"))
	p.tick(ctx, mustTime(t, "07:30:30"), mustTime(t, "07:31:30"))

	if got := hub.count("automation_triggered"); got != 1 {
		t.Errorf("broadcast %d automation_triggered events across 3 ticks, want 1", got)
	}
}

func TestPoller_SkipsInactiveAndUnscheduled(t *testing.T) {
	p, repo, _, hub := setupPoller(t)
	ctx := context.Background()

	inactive := testAutomation(t, "07:30:00")
	inactive.Active = false
	if err := repo.Create(ctx, inactive); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Create(ctx, testAutomation(t, "")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p.tick(ctx, mustTime(t, "07:29:30"), mustTime(t, "07:30:30"))

	if got := hub.count("automation_triggered"); got != 0 {
		t.Errorf("broadcast %d automation_triggered events, want 0", got)
	}
}

func TestPoller_MidnightWrap(t *testing.T) {
	p, repo, _, hub := setupPoller(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testAutomation(t, "00:00:00")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p.tick(ctx, mustTime(t, "23:59:30"), mustTime(t, "00:00:30"))

	if got := hub.count("automation_triggered"); got != 1 {
		t.Errorf("broadcast %d automation_triggered events across midnight, want 1", got)
	}
}

func TestPoller_ScheduledEvents(t *testing.T) {
	p, _, events, hub := setupPoller(t)
	mqtt := &fakeMQTT{}
	p.SetMQTT(mqtt)
	ctx := context.Background()

	tod := mustTime(t, "22:00:00")
	mode := "warm"
	e := &ScheduledEvent{Time: &tod, Mode: &mode, Strips: []int64{1, 4}}
	if err := events.Create(ctx, e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p.tick(ctx, mustTime(t, "21:59:30"), mustTime(t, "22:00:30"))

	if got := hub.count("scheduled_event"); got != 1 {
		t.Fatalf("broadcast %d scheduled_event events, want 1", got)
	}

	trigger, ok := hub.loads[0].(ScheduledEventTrigger)
	if !ok {
		t.Fatalf("payload type = %T, want ScheduledEventTrigger", hub.loads[0])
	}
	if trigger.Mode != "warm" {
		t.Errorf("Mode = %q, want warm", trigger.Mode)
	}

	if got := mqtt.published("applight/events/scheduled"); got != 1 {
		t.Errorf("published %d scheduled events to bus, want 1", got)
	}
	for _, topic := range []string{"applight/strips/1/mode", "applight/strips/4/mode"} {
		if got := mqtt.published(topic); got != 1 {
			t.Errorf("published %d messages to %s, want 1", got, topic)
		}
	}
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	p, _, _, _ := setupPoller(t)
	p.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after context cancel")
	}
}

func TestPoller_RunFiresWithFakeClock(t *testing.T) {
	p, repo, _, hub := setupPoller(t)
	p.interval = 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := repo.Create(ctx, testAutomation(t, "07:30:00")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The fake clock advances 20 seconds per reading, starting just before
	// the schedule, so an early tick's window crosses 07:30:00.
	var mu sync.Mutex
	current := time.Date(2026, 3, 1, 7, 29, 50, 0, time.UTC)
	p.SetLocation(time.UTC)
	p.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := current
		current = current.Add(20 * time.Second)
		return t
	})

	go p.Run(ctx)

	deadline := time.After(2 * time.Second)
	for hub.count("automation_triggered") == 0 {
		select {
		case <-deadline:
			t.Fatal("automation never fired under fake clock")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
}

func TestPoller_LogLineOnFire(t *testing.T) {
	p, repo, _, _ := setupPoller(t)
	logger := &captureLogger{}
	p.SetLogger(logger)
	ctx := context.Background()

	if err := repo.Create(ctx, testAutomation(t, "07:30:00")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p.tick(ctx, mustTime(t, "07:29:30"), mustTime(t, "07:30:30"))

	if !logger.has("automation triggered") {
		t.Error("no operator-visible log line for the firing")
	}
}

// captureLogger records Info messages for assertion.
type captureLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *captureLogger) Debug(msg string, args ...any) {}
func (l *captureLogger) Warn(msg string, args ...any)  {}
func (l *captureLogger) Error(msg string, args ...any) {}

func (l *captureLogger) Info(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *captureLogger) has(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
