// Package executor implements the check executor: the public
// execute(check, connection_config) -> CheckResult operation from
// including the cross-source dual-connection path
// and the Great-Expectations-style fallback path for unregistered
// CheckTypes.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/dqplatform/dq-engine/internal/checkregistry"
	"github.com/dqplatform/dq-engine/internal/connector"
	"github.com/dqplatform/dq-engine/internal/domain"
	"github.com/dqplatform/dq-engine/internal/rule"
	"github.com/dqplatform/dq-engine/internal/sensor"
)

// HistoryReader reads recently-persisted actual_values for a check, used
// to assemble the anomaly rule's _historical_values injection.
type HistoryReader interface {
	RecentActualValues(ctx context.Context, checkID string, since time.Time, limit int) ([]float64, error)
}

const (
	historyLookbackDays = 90
	historyLimit        = 1000
)

// Executor is pure w.r.t. the database except for reading
// historical results; it never persists the CheckResult it returns — that
// is the caller's responsibility (the job manager and worker pool for real runs, the preview
// usecase for previews).
type Executor struct {
	history HistoryReader
}

func New(history HistoryReader) *Executor {
	return &Executor{history: history}
}

// Input bundles a check with its already-decrypted connection config(s).
// ReferenceConfig/ReferenceType are only read when check.ReferenceConnectionID
// is set.
type Input struct {
	Check           *domain.Check
	ConnectionID    string
	ConnType        domain.ConnectionType
	Config          map[string]any
	ReferenceConnID string
	ReferenceType   domain.ConnectionType
	ReferenceConfig map[string]any
}

// Execute runs the full sensor-then-rule pipeline and returns exactly one CheckResult.
// It never returns a Go error for execution-domain failures — those are
// captured in the returned CheckResult's Severity/ErrorMessage fields, per
// the "emit a CheckResult with severity=error" fallback contract.
// A non-nil error return means the check could not even be attempted
// (e.g. a malformed Input).
func (e *Executor) Execute(ctx context.Context, in Input) (*domain.CheckResult, error) {
	started := time.Now()
	check := in.Check

	entry, ok := checkregistry.Lookup(string(check.CheckType))
	if !ok {
		return e.fallback(ctx, in, started)
	}

	params := e.assembleParams(ctx, check, entry)

	if refID, isCrossSource := check.ReferenceConnectionID(); isCrossSource {
		return e.executeCrossSource(ctx, in, entry, params, started, refID)
	}

	conn, err := connector.Open(ctx, in.ConnType, in.Config)
	if err != nil {
		return errorResult(check, in.ConnectionID, started, err), nil
	}
	defer conn.Close(ctx)

	sql, value, err := e.renderAndRun(ctx, conn, entry.SensorType, check, nil)
	if err != nil {
		return errorResult(check, in.ConnectionID, started, err), nil
	}

	result := rule.Evaluate(entry.RuleType, value, params)
	return buildResult(check, in.ConnectionID, started, sql, value, result), nil
}

// Preview behaves exactly like Execute; it exists as a separate method
// name so callers cannot accidentally confuse a persisted execution path
// with a preview one at the call site — the usecase layer is what decides
// not to persist, not this package.
func (e *Executor) Preview(ctx context.Context, in Input) (*domain.CheckResult, error) {
	return e.Execute(ctx, in)
}

func (e *Executor) assembleParams(ctx context.Context, check *domain.Check, entry checkregistry.CheckEntry) rule.Params {
	tier, tierParams := check.RuleParameters.HighestSeverity()
	merged := map[string]any{}
	for k, v := range entry.DefaultParams {
		merged[k] = v
	}
	for k, v := range check.Parameters {
		merged[k] = v
	}
	for k, v := range tierParams {
		merged[k] = v
	}

	p := rule.Params{Severity: severityFromTier(tier)}
	if v, ok := asFloat(merged["min_value"]); ok {
		p.Min = &v
	}
	if v, ok := asFloat(merged["max_value"]); ok {
		p.Max = &v
	}
	if v, ok := asFloat(merged["min_percent"]); ok {
		p.MinPercent = &v
	}
	if v, ok := asFloat(merged["max_percent"]); ok {
		p.MaxPercent = &v
	}
	if v, ok := asInt(merged["min_count"]); ok {
		p.MinCount = &v
	}
	if v, ok := asInt(merged["max_count"]); ok {
		p.MaxCount = &v
	}
	if v, ok := asFloat(merged["max_change_percent"]); ok {
		p.MaxChangePercent = &v
	}
	if v, ok := asFloat(merged["equal_to"]); ok {
		p.Equal = &v
	}
	if v, ok := asFloat(merged["not_equal_to"]); ok {
		p.NotEqual = &v
	}
	if v, ok := asFloat(merged["anomaly_percent"]); ok {
		p.AnomalyPercent = &v
	}

	if entry.RuleType == rule.AnomalyPercentile && e.history != nil {
		since := time.Now().AddDate(0, 0, -historyLookbackDays)
		vals, err := e.history.RecentActualValues(ctx, check.ID, since, historyLimit)
		if err == nil {
			p.HistoricalValues = vals
		}
	}
	return p
}

func severityFromTier(tier string) rule.Severity {
	switch tier {
	case "fatal":
		return rule.Fatal
	case "warning":
		return rule.Warning
	case "error":
		return rule.Error
	default:
		return rule.Error
	}
}

// renderAndRun resolves, renders, and executes the sensor for a check on
// one connector, using extraParams to override/extend render inputs (used
// by the cross-source path to swap in reference-side schema/table/column).
func (e *Executor) renderAndRun(ctx context.Context, conn connector.Connector, sensorType sensor.Type, check *domain.Check, extraParams map[string]any) (string, *float64, error) {
	sen, ok := sensor.Catalog(sensorType)
	if !ok {
		return "", nil, fmt.Errorf("executor: sensor %q not found", sensorType)
	}

	renderParams := sensor.Params{
		"SchemaName":  check.TargetSchema,
		"TableName":   check.TargetTable,
		"QuotedSchema": conn.QuoteIdentifier(check.TargetSchema),
		"QuotedTable":  conn.QuoteIdentifier(check.TargetTable),
	}
	if check.TargetColumn != nil {
		renderParams["ColumnName"] = *check.TargetColumn
		renderParams["QuotedColumn"] = conn.QuoteIdentifier(*check.TargetColumn)
	}
	if check.PartitionByColumn != nil {
		renderParams["PartitionFilter"] = fmt.Sprintf("%s IS NOT NULL", conn.QuoteIdentifier(*check.PartitionByColumn))
	}
	for k, v := range check.Parameters {
		renderParams[k] = v
	}
	for k, v := range extraParams {
		renderParams[k] = v
	}
	if sen.AllowsCustomSQL {
		if raw, ok := check.Parameters["custom_sql"].(string); ok {
			renderParams["CustomSQL"] = raw
		}
	}

	rendered, err := sen.Render(renderParams)
	if err != nil {
		return "", nil, err
	}

	value, err := conn.ExecuteSensorSQL(ctx, rendered)
	if err != nil {
		return rendered, nil, err
	}
	return rendered, value, nil
}

func buildResult(check *domain.Check, connID string, started time.Time, sql string, value *float64, r rule.Result) *domain.CheckResult {
	return &domain.CheckResult{
		ExecutedAt:      started,
		CheckID:         check.ID,
		ConnectionID:    connID,
		TargetTable:     check.TargetTable,
		TargetColumn:    check.TargetColumn,
		CheckType:       check.CheckType,
		ActualValue:     value,
		Passed:          r.Passed,
		Severity:        domain.ResultSeverity(r.Severity),
		Message:         r.Message,
		ExecutionTimeMS: time.Since(started).Milliseconds(),
		ExecutedSQL:     &sql,
	}
}

func errorResult(check *domain.Check, connID string, started time.Time, err error) *domain.CheckResult {
	msg := fmt.Sprintf("Execution failed: %v", err)
	return &domain.CheckResult{
		ExecutedAt:      started,
		CheckID:         check.ID,
		ConnectionID:    connID,
		TargetTable:     check.TargetTable,
		TargetColumn:    check.TargetColumn,
		CheckType:       check.CheckType,
		Passed:          false,
		Severity:        domain.SeverityError,
		Message:         msg,
		ExecutionTimeMS: time.Since(started).Milliseconds(),
		ErrorMessage:    &msg,
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
