// Package audit provides audit logging for configuration API writes.
package audit

import (
	"os"
	"os/user"
	"time"

	"github.com/google/uuid"
)

// Event represents one create, update or delete sent to the API
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Host      string        `json:"host,omitempty"`
	Kind      string        `json:"kind"`
	Name      string        `json:"name"`
	Endpoint  string        `json:"endpoint"`
	Action    string        `json:"action"`
	Status    int           `json:"status,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Row       int           `json:"row,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Kind        string
	Name        string
	Action      string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event for the current OS user
func NewEvent(kind, name, endpoint string) *Event {
	host, _ := os.Hostname()
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      currentUser(),
		Host:      host,
		Kind:      kind,
		Name:      name,
		Endpoint:  endpoint,
	}
}

// WithAction sets the action and response status
func (e *Event) WithAction(action string, status int) *Event {
	e.Action = action
	e.Status = status
	return e
}

// WithRow records the CSV line the object came from
func (e *Event) WithRow(line int) *Event {
	e.Row = line
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}
