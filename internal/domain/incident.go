package domain

import "time"

type IncidentStatus string

const (
	IncidentOpen         IncidentStatus = "open"
	IncidentAcknowledged IncidentStatus = "acknowledged"
	IncidentResolved     IncidentStatus = "resolved"
)

type IncidentSeverity string

const (
	IncidentLow      IncidentSeverity = "low"
	IncidentMedium   IncidentSeverity = "medium"
	IncidentHigh     IncidentSeverity = "high"
	IncidentCritical IncidentSeverity = "critical"
)

// MapResultSeverity implements the open-time severity mapping:
// warning->low, error->medium, fatal->high (critical reserved for
// operator escalation and never produced here).
func MapResultSeverity(s ResultSeverity) IncidentSeverity {
	switch s {
	case SeverityWarning:
		return IncidentLow
	case SeverityFatal:
		return IncidentHigh
	default:
		return IncidentMedium
	}
}

// incidentTransitions enforces open<->acknowledged, {open,acknowledged}->resolved,
// resolved->open (reopen).
var incidentTransitions = map[IncidentStatus][]IncidentStatus{
	IncidentOpen:         {IncidentAcknowledged, IncidentResolved},
	IncidentAcknowledged: {IncidentOpen, IncidentResolved},
	IncidentResolved:     {IncidentOpen},
}

func (s IncidentStatus) CanTransition(next IncidentStatus) bool {
	for _, allowed := range incidentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Incident aggregates repeated check failures. At most one non-resolved
// incident exists per check_id at any time (enforced by a partial unique
// index on the persistence side).
type Incident struct {
	ID               string           `json:"id"`
	CheckID          string           `json:"checkId"`
	ResultID         *string          `json:"resultId,omitempty"`
	Status           IncidentStatus   `json:"status"`
	Severity         IncidentSeverity `json:"severity"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	FirstFailureAt   time.Time        `json:"firstFailureAt"`
	LastFailureAt    time.Time        `json:"lastFailureAt"`
	FailureCount     int              `json:"failureCount"`
	ResolvedAt       *time.Time       `json:"resolvedAt,omitempty"`
	ResolvedBy       *string          `json:"resolvedBy,omitempty"`
	ResolutionNotes  *string          `json:"resolutionNotes,omitempty"`
	AcknowledgedAt   *time.Time       `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy   *string          `json:"acknowledgedBy,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// IncidentEventType names the two lifecycle events the notification
// dispatcher subscribes to, plus the synthetic "test" event.
type IncidentEventType string

const (
	EventIncidentOpened   IncidentEventType = "incident.opened"
	EventIncidentResolved IncidentEventType = "incident.resolved"
	EventTest             IncidentEventType = "test"
)

// IncidentEvent is the fire-and-forget payload the incident manager emits to the notification dispatcher.
type IncidentEvent struct {
	Type      IncidentEventType
	Incident  *Incident
	Timestamp time.Time
}
