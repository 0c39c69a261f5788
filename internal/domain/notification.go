package domain

import "time"

// NotificationChannel is a webhook destination for incident events.
type NotificationChannel struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ChannelType string          `json:"channelType"` // always "webhook" today
	Config      ChannelConfig   `json:"config"`
	Events      []string        `json:"events"`
	MinSeverity *ResultSeverity `json:"minSeverity,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ChannelConfig struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// SubscribesTo reports whether this channel should receive events of type t.
func (c *NotificationChannel) SubscribesTo(t IncidentEventType) bool {
	for _, e := range c.Events {
		if e == string(t) {
			return true
		}
	}
	return false
}

// incidentSeverityToResult maps an Incident's allocated severity back onto
// the result-severity scale for min_severity filtering:
// low->warning, medium->error, high->fatal, critical->fatal.
func incidentSeverityToResult(s IncidentSeverity) ResultSeverity {
	switch s {
	case IncidentLow:
		return SeverityWarning
	case IncidentHigh, IncidentCritical:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// Passes reports whether the given incident clears this channel's
// min_severity filter.
func (c *NotificationChannel) Passes(incidentSeverity IncidentSeverity) bool {
	if c.MinSeverity == nil {
		return true
	}
	return incidentSeverityToResult(incidentSeverity).AtLeast(*c.MinSeverity)
}

// WebhookIncidentPayload is the `incident` object embedded in the
// notification wire format.
type WebhookIncidentPayload struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Severity     IncidentSeverity `json:"severity"`
	Status       IncidentStatus   `json:"status"`
	FailureCount int              `json:"failure_count"`
	CheckID      string           `json:"check_id"`
	Description  string           `json:"description"`
}

type WebhookPayload struct {
	Event     string                  `json:"event"`
	Timestamp time.Time               `json:"timestamp"`
	Incident  WebhookIncidentPayload  `json:"incident"`
}
