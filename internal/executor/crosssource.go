package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/dqplatform/dq-engine/internal/checkregistry"
	"github.com/dqplatform/dq-engine/internal/connector"
	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/rule"
)

// executeCrossSource compares two connections: the same sensor is rendered and
// executed on the source and reference connections, and the rule runs
// against their match percent rather than either raw value.
func (e *Executor) executeCrossSource(ctx context.Context, in Input, entry checkregistry.CheckEntry, params rule.Params, started time.Time, refConnID string) (*domain.CheckResult, error) {
	check := in.Check

	srcConn, err := connector.Open(ctx, in.ConnType, in.Config)
	if err != nil {
		return errorResult(check, in.ConnectionID, started, err), nil
	}
	defer srcConn.Close(ctx)

	refConn, err := connector.Open(ctx, in.ReferenceType, in.ReferenceConfig)
	if err != nil {
		return errorResult(check, in.ConnectionID, started, fmt.Errorf("reference connection %q: %w", refConnID, err)), nil
	}
	defer refConn.Close(ctx)

	srcSQL, srcVal, srcErr := e.renderAndRun(ctx, srcConn, entry.SensorType, check, nil)
	refParams := referenceRenderParams(check, refConn.QuoteIdentifier)
	refSQL, refVal, refErr := e.renderAndRun(ctx, refConn, entry.SensorType, check, refParams)

	if srcErr != nil || refErr != nil {
		combinedErr := srcErr
		if combinedErr == nil {
			combinedErr = fmt.Errorf("reference connection %q: %w", refConnID, refErr)
		}
		return errorResult(check, in.ConnectionID, started, combinedErr), nil
	}

	matchPercent := matchPercent(srcVal, refVal)
	ruleResult := rule.Evaluate(entry.RuleType, matchPercent, params)

	executedSQL := fmt.Sprintf("-- source\n%s\n-- reference (%s)\n%s", srcSQL, refConnID, refSQL)
	message := fmt.Sprintf("%s (source=%s, reference=%s)", ruleResult.Message, formatPtr(srcVal), formatPtr(refVal))

	return &domain.CheckResult{
		ExecutedAt:      started,
		CheckID:         check.ID,
		ConnectionID:    in.ConnectionID,
		TargetTable:     check.TargetTable,
		TargetColumn:    check.TargetColumn,
		CheckType:       check.CheckType,
		ActualValue:     matchPercent,
		Passed:          ruleResult.Passed,
		Severity:        domain.ResultSeverity(ruleResult.Severity),
		Message:         message,
		ExecutionTimeMS: time.Since(started).Milliseconds(),
		ExecutedSQL:     &executedSQL,
		ResultDetails: map[string]any{
			"source_value":    derefOrNil(srcVal),
			"reference_value": derefOrNil(refVal),
		},
	}, nil
}

// referenceRenderParams swaps in the reference-side schema/table/column
// overrides from check.Parameters ("reference_schema", "reference_table",
// "reference_column"), falling back to the source-side names when absent.
func referenceRenderParams(check *domain.Check, quote func(string) string) map[string]any {
	out := map[string]any{}
	if s, ok := check.Parameters["reference_schema"].(string); ok && s != "" {
		out["SchemaName"] = s
		out["QuotedSchema"] = quote(s)
	}
	if t, ok := check.Parameters["reference_table"].(string); ok && t != "" {
		out["TableName"] = t
		out["QuotedTable"] = quote(t)
	}
	if c, ok := check.Parameters["reference_column"].(string); ok && c != "" {
		out["ColumnName"] = c
		out["QuotedColumn"] = quote(c)
	}
	return out
}

// matchPercent computes the row-match ratio between two connections.
func matchPercent(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	av, bv := abs(*a), abs(*b)
	switch {
	case av == 0 && bv == 0:
		v := 100.0
		return &v
	case max(av, bv) == 0:
		v := 0.0
		return &v
	default:
		v := min(av, bv) / max(av, bv) * 100
		return &v
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func formatPtr(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", *v)
}

func derefOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
