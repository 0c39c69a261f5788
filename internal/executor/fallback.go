package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/dqplatform/dq-engine/internal/checkregistry"
	"github.com/dqplatform/dq-engine/internal/connector"
	"github.com/dqplatform/dq-engine/internal/domain"
)

// fallback implements the Great-Expectations-style path for CheckTypes
// absent from the check-type registry but present in the legacy registry
// If the legacy registry also has no entry,
// it emits an error CheckResult rather than failing the whole operation.
func (e *Executor) fallback(ctx context.Context, in Input, started time.Time) (*domain.CheckResult, error) {
	check := in.Check

	legacyEntry, ok := checkregistry.LookupLegacy(string(check.CheckType))
	if !ok {
		return errorResult(check, in.ConnectionID, started, fmt.Errorf("check type %q is not registered", check.CheckType)), nil
	}

	conn, err := connector.Open(ctx, in.ConnType, in.Config)
	if err != nil {
		return errorResult(check, in.ConnectionID, started, err), nil
	}
	defer conn.Close(ctx)

	sql, observed, comment := e.runLegacyExpectation(ctx, conn, check, legacyEntry)

	passed := observed != nil && *observed >= legacyEntry.Mostly*100
	severity := domain.SeverityPassed
	if !passed {
		severity = domain.SeverityError
	}

	return &domain.CheckResult{
		ExecutedAt:      started,
		CheckID:         check.ID,
		ConnectionID:    in.ConnectionID,
		TargetTable:     check.TargetTable,
		TargetColumn:    check.TargetColumn,
		CheckType:       check.CheckType,
		ActualValue:     observed,
		Passed:          passed,
		Severity:        severity,
		Message:         comment,
		ExecutionTimeMS: time.Since(started).Milliseconds(),
		ExecutedSQL:     &sql,
		ResultDetails: map[string]any{
			"expectation": legacyEntry.Expectation,
			"mostly":      legacyEntry.Mostly,
		},
	}, nil
}

// runLegacyExpectation evaluates every legacy expectation as one "percent
// passing" query, the same contract Great Expectations' "mostly" parameter
// expresses: the percent of non-null values in the target column. The
// expectation name only appears in the returned comment; it does not change
// the query.
func (e *Executor) runLegacyExpectation(ctx context.Context, conn connector.Connector, check *domain.Check, entry checkregistry.LegacyExpectation) (sql string, observed *float64, comment string) {
	if check.TargetColumn == nil {
		return "", nil, "legacy expectation requires a target column"
	}
	quotedCol := conn.QuoteIdentifier(*check.TargetColumn)
	quotedSchema := conn.QuoteIdentifier(check.TargetSchema)
	quotedTable := conn.QuoteIdentifier(check.TargetTable)

	query := fmt.Sprintf(
		`SELECT 100.0 * SUM(CASE WHEN %s IS NOT NULL THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM %s.%s`,
		quotedCol, quotedSchema, quotedTable,
	)

	val, err := conn.ExecuteSensorSQL(ctx, query)
	if err != nil {
		return query, nil, fmt.Sprintf("legacy expectation %q failed: %v", entry.Expectation, err)
	}
	return query, val, fmt.Sprintf("legacy expectation %q evaluated at mostly=%.2f", entry.Expectation, entry.Mostly)
}
