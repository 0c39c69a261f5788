package domain

import "time"

// ResultSeverity is the severity tag carried by a CheckResult.
type ResultSeverity string

const (
	SeverityPassed  ResultSeverity = "passed"
	SeverityWarning ResultSeverity = "warning"
	SeverityError   ResultSeverity = "error"
	SeverityFatal   ResultSeverity = "fatal"
)

// severityOrder gives warning<error<fatal for min_severity filtering.
var severityOrder = map[ResultSeverity]int{
	SeverityWarning: 1,
	SeverityError:   2,
	SeverityFatal:   3,
}

// AtLeast reports whether s is at least as severe as min (passed is never
// "at least" anything but passed itself).
func (s ResultSeverity) AtLeast(min ResultSeverity) bool {
	if min == "" {
		return true
	}
	return severityOrder[s] >= severityOrder[min]
}

// CheckResult is an immutable, append-only record of one check execution.
type CheckResult struct {
	ID              string         `json:"id"`
	ExecutedAt      time.Time      `json:"executedAt"`
	CheckID         string         `json:"checkId"`
	JobID           string         `json:"jobId"`
	ConnectionID    string         `json:"connectionId"`
	TargetTable     string         `json:"targetTable"`
	TargetColumn    *string        `json:"targetColumn,omitempty"`
	CheckType       CheckType      `json:"checkType"`
	ActualValue     *float64       `json:"actualValue,omitempty"`
	ExpectedValue   *float64       `json:"expectedValue,omitempty"`
	Passed          bool           `json:"passed"`
	Severity        ResultSeverity `json:"severity"`
	Message         string         `json:"message,omitempty"`
	ExecutionTimeMS int64          `json:"executionTimeMs"`
	RowsScanned     *int64         `json:"rowsScanned,omitempty"`
	ResultDetails   map[string]any `json:"resultDetails,omitempty"`
	ErrorMessage    *string        `json:"errorMessage,omitempty"`
	ExecutedSQL     *string        `json:"executedSql,omitempty"`
}

// ResultsSummary is the aggregate returned by GET /results/summary.
type ResultsSummary struct {
	Total             int64                    `json:"total"`
	Passed            int64                    `json:"passed"`
	Failed            int64                    `json:"failed"`
	PassRate          float64                  `json:"passRate"`
	AvgExecutionTimeMS float64                 `json:"avgExecutionTimeMs"`
	BySeverity        map[ResultSeverity]int64 `json:"bySeverity"`
}
