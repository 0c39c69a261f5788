package domain

import "time"

type CheckMode string

const (
	CheckModeProfiling   CheckMode = "profiling"
	CheckModeMonitoring  CheckMode = "monitoring"
	CheckModePartitioned CheckMode = "partitioned"
)

type TimeScale string

const (
	TimeScaleDaily   TimeScale = "daily"
	TimeScaleMonthly TimeScale = "monthly"
)

// CheckType is a key into the check registry (internal/checkregistry).
// The enum is closed but extensible by registry entry, not by this type.
type CheckType string

// RuleParams is a flat bag of rule-evaluator inputs for one severity tier
// (e.g. {"min_count": 1}).
type RuleParams map[string]any

// RuleParameters carries up to three severity-keyed threshold records.
// Only "warning", "error", "fatal" keys are meaningful.
type RuleParameters map[string]RuleParams

// HighestSeverity returns the params for the highest-severity tier present
// (fatal > error > warning) and that tier's name, or ("", nil) if empty.
func (r RuleParameters) HighestSeverity() (string, RuleParams) {
	for _, tier := range []string{"fatal", "error", "warning"} {
		if p, ok := r[tier]; ok {
			return tier, p
		}
	}
	return "", nil
}

// Check is a persistent data-quality assertion against a table or column.
type Check struct {
	ID                string         `json:"id"`
	ConnectionID      string         `json:"connectionId"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	CheckType         CheckType      `json:"checkType"`
	CheckMode         CheckMode      `json:"checkMode"`
	TimeScale         *TimeScale     `json:"timeScale,omitempty"`
	TargetSchema      string         `json:"targetSchema,omitempty"`
	TargetTable       string         `json:"targetTable"`
	TargetColumn      *string        `json:"targetColumn,omitempty"`
	PartitionByColumn *string        `json:"partitionByColumn,omitempty"`
	Parameters        map[string]any `json:"parameters,omitempty"`
	RuleParameters     RuleParameters `json:"ruleParameters,omitempty"`
	IsActive          bool           `json:"isActive"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// ReferenceConnectionID returns the cross-source reference connection id
// from Parameters, if the check is configured as a cross-source match.
func (c *Check) ReferenceConnectionID() (string, bool) {
	if c.Parameters == nil {
		return "", false
	}
	v, ok := c.Parameters["reference_connection_id"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Validate enforces the structural invariants from the data model:
// column-level checks require a target column, partitioned checks require
// a partition column. isColumnLevel is resolved from the check registry.
func (c *Check) Validate(isColumnLevel bool) error {
	if c.TargetTable == "" {
		return NewValidationError("target_table is required")
	}
	if isColumnLevel && (c.TargetColumn == nil || *c.TargetColumn == "") {
		return NewValidationError("target_column is required for column-level check type %q", c.CheckType)
	}
	if c.CheckMode == CheckModePartitioned && (c.PartitionByColumn == nil || *c.PartitionByColumn == "") {
		return NewValidationError("partition_by_column is required when check_mode=partitioned")
	}
	return nil
}
