package automation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a wall-clock time of day in seconds since midnight.
// It is stored as "HH:MM:SS" TEXT and accepts "HH:MM" on input.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	var hms [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		hms[i] = n
	}

	if hms[0] < 0 || hms[0] > 23 || hms[1] < 0 || hms[1] > 59 || hms[2] < 0 || hms[2] > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	return TimeOfDay(hms[0]*3600 + hms[1]*60 + hms[2]), nil
}

// TimeOfDayAt extracts the time of day from an instant in the given location.
func TimeOfDayAt(t time.Time, loc *time.Location) TimeOfDay {
	local := t.In(loc)
	return TimeOfDay(local.Hour()*3600 + local.Minute()*60 + local.Second())
}

// String formats the time as "HH:MM:SS".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)%3600/60, int(t)%60)
}

// MarshalJSON encodes the time as its "HH:MM:SS" string form.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON decodes "HH:MM" or "HH:MM:SS" strings.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTime, data)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Automation is a time-triggered rule.
//
// Trigger and Action are free-text descriptions, not executable
// references: firing an automation broadcasts the action string to
// subscribers, it does not dispatch to device state.
type Automation struct {
	ID int64 `json:"id"`

	// Trigger describes the condition in operator terms ("sunset", "07:30 weekdays").
	Trigger *string `json:"trigger,omitempty"`

	// Action describes what should happen ("turn on hallway light").
	Action *string `json:"action,omitempty"`

	// Active gates the poller scan: inactive automations never fire.
	Active bool `json:"active"`

	// ScheduledTime is the daily firing time. Nil means the automation
	// has no schedule and is ignored by the poller.
	ScheduledTime *TimeOfDay `json:"scheduled_time,omitempty"`
}

// ScheduledEvent is a daily lighting-strip program entry.
type ScheduledEvent struct {
	ID int64 `json:"id"`

	// Time is the daily firing time; nil entries are ignored by the poller.
	Time *TimeOfDay `json:"time,omitempty"`

	// Mode is the strip program to apply (e.g. "rainbow", "warm").
	Mode *string `json:"mode,omitempty"`

	// Strips lists the target strip IDs. Stored as comma-separated text.
	Strips []int64 `json:"strips,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TriggerEvent is the wire payload broadcast when an automation fires.
type TriggerEvent struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// ScheduledEventTrigger is the wire payload broadcast when a scheduled
// event's time is crossed.
type ScheduledEventTrigger struct {
	ID          int64     `json:"id"`
	Mode        string    `json:"mode"`
	Strips      []int64   `json:"strips"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// GenerateEventID creates a new UUID for correlating a single firing
// across log lines and bus messages.
func GenerateEventID() string {
	return uuid.New().String()
}

// ParseStrips parses comma-separated strip IDs ("1,4,7") into a slice.
// Empty input yields nil; whitespace around entries is tolerated.
func ParseStrips(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	strips := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStrips, s)
		}
		strips = append(strips, id)
	}
	return strips, nil
}

// FormatStrips renders strip IDs as comma-separated text for storage.
func FormatStrips(strips []int64) string {
	if len(strips) == 0 {
		return ""
	}

	parts := make([]string, len(strips))
	for i, id := range strips {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
