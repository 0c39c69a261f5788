package domain

import "time"

// Schedule binds a cron expression to a Check, periodically enqueuing Jobs.
// Invariant: while IsActive, NextRunAt is always set to the next cron
// firing >= max(now, LastRunAt).
type Schedule struct {
	ID        string     `json:"id"`
	CheckID   string     `json:"checkId"`
	CronExpr  string     `json:"cronExpr"`
	Timezone  string     `json:"timezone"`
	IsActive  bool       `json:"isActive"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	NextRunAt *time.Time `json:"nextRunAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
