// Package rule implements the pure rule evaluator: a
// function of (sensor value, params) -> pass/fail with a severity tag.
package rule

import (
	"fmt"
	"sort"
)

// Type enumerates the closed RuleType set.
type Type string

const (
	MinValue          Type = "min_value"
	MaxValue          Type = "max_value"
	MinMaxValue       Type = "min_max_value"
	MinPercent        Type = "min_percent"
	MaxPercent        Type = "max_percent"
	MinMaxPercent     Type = "min_max_percent"
	MinCount          Type = "min_count"
	MaxCount          Type = "max_count"
	MinMaxCount       Type = "min_max_count"
	MaxChangePercent  Type = "max_change_percent"
	EqualTo           Type = "equal_to"
	NotEqualTo        Type = "not_equal_to"
	IsTrue            Type = "is_true"
	IsFalse           Type = "is_false"
	AnomalyPercentile Type = "anomaly_percentile"
)

// Severity mirrors domain.ResultSeverity without importing the domain
// package, keeping this evaluator a dependency-free pure function as
// a pure function of (sensor_value, params).
type Severity string

const (
	Passed  Severity = "passed"
	Warning Severity = "warning"
	Error   Severity = "error"
	Fatal   Severity = "fatal"
)

// Result is the rule's verdict.
type Result struct {
	Passed   bool
	Severity Severity
	Message  string
}

// Params is the flattened, merged parameter bag: sensor
// defaults -> check defaults -> the selected severity tier's threshold
// record, with Severity set to that tier's tag.
type Params struct {
	Severity Severity

	Min, Max                 *float64
	MinPercent, MaxPercent   *float64
	MinCount, MaxCount       *int64
	MaxChangePercent         *float64
	Equal, NotEqual          *float64

	// AnomalyPercent is `p` in the Tukey-fence widening factor.
	AnomalyPercent *float64
	// HistoricalValues is the read-only _historical_values injection.
	HistoricalValues []float64
}

func (p Params) severityOr(def Severity) Severity {
	if p.Severity == "" {
		return def
	}
	return p.Severity
}

// Evaluate runs rule ruleType against sensorValue (nil = SQL NULL) and
// params.
func Evaluate(ruleType Type, sensorValue *float64, params Params) Result {
	severity := params.severityOr(Error)

	if ruleType != AnomalyPercentile && sensorValue == nil {
		return Result{Passed: false, Severity: severity, Message: "sensor returned null"}
	}

	switch ruleType {
	case AnomalyPercentile:
		return evaluateAnomaly(sensorValue, params, severity)
	case MinValue:
		return thresholdMin(*sensorValue, params.Min, severity)
	case MaxValue:
		return thresholdMax(*sensorValue, params.Max, severity)
	case MinMaxValue:
		return thresholdMinMax(*sensorValue, params.Min, params.Max, severity)
	case MinPercent:
		return thresholdMin(*sensorValue, params.MinPercent, severity)
	case MaxPercent:
		return thresholdMax(*sensorValue, params.MaxPercent, severity)
	case MinMaxPercent:
		return thresholdMinMax(*sensorValue, params.MinPercent, params.MaxPercent, severity)
	case MinCount:
		return thresholdMinCount(*sensorValue, params.MinCount, severity)
	case MaxCount:
		return thresholdMaxCount(*sensorValue, params.MaxCount, severity)
	case MinMaxCount:
		return thresholdMinMaxCount(*sensorValue, params.MinCount, params.MaxCount, severity)
	case MaxChangePercent:
		return thresholdMax(*sensorValue, params.MaxChangePercent, severity)
	case EqualTo:
		if params.Equal != nil && *sensorValue == *params.Equal {
			return Result{Passed: true, Severity: Passed, Message: "value equals expected"}
		}
		return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("value %v does not equal expected %v", *sensorValue, deref(params.Equal))}
	case NotEqualTo:
		if params.NotEqual != nil && *sensorValue == *params.NotEqual {
			return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("value %v equals forbidden %v", *sensorValue, *params.NotEqual)}
		}
		return Result{Passed: true, Severity: Passed, Message: "value differs from forbidden"}
	case IsTrue:
		if *sensorValue != 0 {
			return Result{Passed: true, Severity: Passed, Message: "value is true"}
		}
		return Result{Passed: false, Severity: severity, Message: "value is false"}
	case IsFalse:
		if *sensorValue == 0 {
			return Result{Passed: true, Severity: Passed, Message: "value is false"}
		}
		return Result{Passed: false, Severity: severity, Message: "value is true"}
	default:
		return Result{Passed: false, Severity: Error, Message: fmt.Sprintf("unknown rule type %q", ruleType)}
	}
}

func deref(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func thresholdMin(v float64, min *float64, severity Severity) Result {
	if min == nil || v >= *min {
		return Result{Passed: true, Severity: Passed, Message: "value meets minimum"}
	}
	return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("value %v below minimum %v", v, *min)}
}

func thresholdMax(v float64, max *float64, severity Severity) Result {
	if max == nil || v <= *max {
		return Result{Passed: true, Severity: Passed, Message: "value within maximum"}
	}
	return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("value %v exceeds maximum %v", v, *max)}
}

func thresholdMinMax(v float64, min, max *float64, severity Severity) Result {
	r := thresholdMin(v, min, severity)
	if !r.Passed {
		return r
	}
	return thresholdMax(v, max, severity)
}

func thresholdMinCount(v float64, min *int64, severity Severity) Result {
	if min == nil || int64(v) >= *min {
		return Result{Passed: true, Severity: Passed, Message: "count meets minimum"}
	}
	return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("count %v below minimum %v", int64(v), *min)}
}

func thresholdMaxCount(v float64, max *int64, severity Severity) Result {
	if max == nil || int64(v) <= *max {
		return Result{Passed: true, Severity: Passed, Message: "count within maximum"}
	}
	return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("count %v exceeds maximum %v", int64(v), *max)}
}

func thresholdMinMaxCount(v float64, min, max *int64, severity Severity) Result {
	r := thresholdMinCount(v, min, severity)
	if !r.Passed {
		return r
	}
	return thresholdMaxCount(v, max, severity)
}

// evaluateAnomaly implements the Tukey-fence anomaly rule (
// fewer than 7 non-null historical values
// passes trivially; otherwise bounds are [Q1-k*iqr, Q3+k*iqr] with
// k = 1.5*(1+p/100), using linear-interpolation-inclusive quartiles.
func evaluateAnomaly(sensorValue *float64, params Params, severity Severity) Result {
	hist := nonNil(params.HistoricalValues)
	if len(hist) < 7 {
		return Result{Passed: true, Severity: Passed, Message: "insufficient history"}
	}
	if sensorValue == nil {
		return Result{Passed: false, Severity: severity, Message: "sensor returned null"}
	}

	p := 5.0
	if params.AnomalyPercent != nil {
		p = *params.AnomalyPercent
	}
	k := 1.5 * (1 + p/100)

	sorted := append([]float64(nil), hist...)
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1

	if iqr == 0 {
		if *sensorValue == q1 {
			return Result{Passed: true, Severity: Passed, Message: "value matches stable history"}
		}
		return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("value %v deviates from stable history %v", *sensorValue, q1)}
	}

	lower := q1 - k*iqr
	upper := q3 + k*iqr
	if *sensorValue < lower || *sensorValue > upper {
		return Result{Passed: false, Severity: severity, Message: fmt.Sprintf("value %v outside anomaly bounds [%v, %v]", *sensorValue, lower, upper)}
	}
	return Result{Passed: true, Severity: Passed, Message: "value within anomaly bounds"}
}

func nonNil(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	out = append(out, vs...)
	return out
}

// quantile computes the linear-interpolation-inclusive quantile (the
// "R-7"/Excel method), using linear interpolation, inclusive.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
