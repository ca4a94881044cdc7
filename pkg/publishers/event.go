package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-api-probe/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Source      string         `json:"source"`
	Outcome     domain.Outcome `json:"outcome"`
	PublishedAt time.Time      `json:"published_at"`
}

// NewEvent constructs an Event for the given probe outcome.
func NewEvent(source string, out domain.Outcome) Event {
	return Event{
		Source:      source,
		Outcome:     out,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are the message attributes set on queue and topic sinks.
func (e Event) attributes() map[string]string {
	success := "false"
	if e.Outcome.Success {
		success = "true"
	}
	kind := e.Outcome.Kind
	if kind == "" {
		kind = "none"
	}
	return map[string]string{
		"source":  e.Source,
		"success": success,
		"kind":    kind,
	}
}
