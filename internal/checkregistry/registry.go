// Package checkregistry maps a CheckType to the (SensorType, RuleType)
// pair the executor dispatches to. The set is static and
// closed; an unregistered CheckType falls back to the legacy evaluator
// (legacy.go) or, failing that, the executor's generic error path.
package checkregistry

import (
	"github.com/dqplatform/dq-engine/internal/rule"
	"github.com/dqplatform/dq-engine/internal/sensor"
)

// Category groups CheckEntry records for listing/filtering, matching the
// sensor families the platform supports.
type Category string

const (
	CategoryVolume       Category = "volume"
	CategorySchema       Category = "schema"
	CategoryTimeliness   Category = "timeliness"
	CategoryNulls        Category = "nulls"
	CategoryUniqueness   Category = "uniqueness"
	CategoryNumeric      Category = "numeric"
	CategoryStatistical  Category = "statistical"
	CategoryPercentile   Category = "percentile"
	CategoryText         Category = "text"
	CategoryPattern      Category = "pattern"
	CategoryPII          Category = "pii"
	CategoryGeographic   Category = "geographic"
	CategoryBoolean      Category = "boolean"
	CategoryDatetime     Category = "datetime"
	CategoryReferential  Category = "referential"
	CategoryCustomSQL    Category = "custom_sql"
	CategoryCrossTable   Category = "cross_table"
	CategoryChange       Category = "change_detection"
	CategoryAnomalyInput Category = "anomaly_input"
	CategoryCrossSource  Category = "cross_source"
)

// CheckEntry is the static record a CheckType resolves to.
type CheckEntry struct {
	CheckType     string
	SensorType    sensor.Type
	RuleType      rule.Type
	Category      Category
	IsColumnLevel bool
	DefaultParams map[string]any
}

// registry is the closed 44-entry table spanning every sensor family.
// New entries follow the same pattern; an unregistered CheckType degrades
// to the legacy fallback rather than panicking.
var registry = map[string]CheckEntry{
	// volume
	"row_count":               {"row_count", "row_count", rule.MinCount, CategoryVolume, false, nil},
	"row_count_min":           {"row_count_min", "row_count", rule.MinValue, CategoryVolume, false, nil},
	"row_count_anomaly":       {"row_count_anomaly", "row_count", rule.AnomalyPercentile, CategoryAnomalyInput, false, nil},
	"row_count_change_percent": {"row_count_change_percent", "row_count_change", rule.MaxChangePercent, CategoryChange, false, nil},

	// schema
	"column_count":  {"column_count", "column_count", rule.EqualTo, CategorySchema, false, nil},
	"column_exists": {"column_exists", "column_exists", rule.IsTrue, CategorySchema, true, nil},

	// timeliness
	"data_freshness":       {"data_freshness", "data_freshness", rule.MaxValue, CategoryTimeliness, true, nil},
	"data_staleness_days":  {"data_staleness_days", "data_staleness", rule.MaxValue, CategoryTimeliness, true, nil},

	// nulls
	"nulls_count":          {"nulls_count", "nulls_count", rule.MaxCount, CategoryNulls, true, nil},
	"null_percent":         {"null_percent", "nulls_percent", rule.MaxPercent, CategoryNulls, true, nil},
	"nulls_percent":        {"nulls_percent", "nulls_percent", rule.MaxPercent, CategoryNulls, true, nil},
	"not_null_percent":     {"not_null_percent", "nulls_percent", rule.MaxPercent, CategoryNulls, true, nil},

	// uniqueness
	"distinct_count":       {"distinct_count", "distinct_count", rule.MinValue, CategoryUniqueness, true, nil},
	"duplicate_percent":    {"duplicate_percent", "duplicate_percent", rule.MaxPercent, CategoryUniqueness, true, nil},
	"distinct_percent":     {"distinct_percent", "distinct_count", rule.MinPercent, CategoryUniqueness, true, nil},

	// numeric
	"min_value":  {"min_value", "min_value", rule.MinValue, CategoryNumeric, true, nil},
	"max_value":  {"max_value", "max_value", rule.MaxValue, CategoryNumeric, true, nil},
	"value_range": {"value_range", "min_value", rule.MinMaxValue, CategoryNumeric, true, nil},
	"sum_value":  {"sum_value", "sum_value", rule.MinMaxValue, CategoryNumeric, true, nil},
	"mean_value": {"mean_value", "mean_value", rule.MinMaxValue, CategoryNumeric, true, nil},
	"mean_anomaly": {"mean_anomaly", "mean_value", rule.AnomalyPercentile, CategoryAnomalyInput, true, nil},

	// statistical
	"stddev_sample":   {"stddev_sample", "stddev_sample", rule.MaxValue, CategoryStatistical, true, nil},
	"variance_sample": {"variance_sample", "variance_sample", rule.MaxValue, CategoryStatistical, true, nil},
	"sum_anomaly":     {"sum_anomaly", "sum_value", rule.AnomalyPercentile, CategoryAnomalyInput, true, nil},

	// percentile
	"percentile_value": {"percentile_value", "percentile", rule.MinMaxValue, CategoryPercentile, true, map[string]any{"Percentile": 0.5}},
	"median_value":      {"median_value", "percentile", rule.MinMaxValue, CategoryPercentile, true, map[string]any{"Percentile": 0.5}},

	// text
	"text_min_length": {"text_min_length", "text_min_length", rule.MinValue, CategoryText, true, nil},
	"text_max_length": {"text_max_length", "text_max_length", rule.MaxValue, CategoryText, true, nil},
	"empty_text_percent": {"empty_text_percent", "empty_text_percent", rule.MaxPercent, CategoryText, true, nil},

	// pattern
	"regex_pattern":          {"regex_pattern", "regex_match_percent", rule.MinPercent, CategoryPattern, true, nil},
	"regex_match_percent":    {"regex_match_percent", "regex_match_percent", rule.MinPercent, CategoryPattern, true, nil},
	"allowed_values_percent": {"allowed_values_percent", "regex_match_percent", rule.MinPercent, CategoryPattern, true, nil},

	// PII
	"contains_email_percent": {"contains_email_percent", "contains_email_percent", rule.MaxPercent, CategoryPII, true, nil},
	"contains_phone_percent": {"contains_phone_percent", "contains_phone_percent", rule.MaxPercent, CategoryPII, true, nil},

	// geographic
	"valid_latitude_percent": {"valid_latitude_percent", "valid_latitude_percent", rule.MinPercent, CategoryGeographic, true, nil},

	// boolean
	"true_percent":  {"true_percent", "true_percent", rule.MinPercent, CategoryBoolean, true, nil},
	"false_percent": {"false_percent", "false_percent", rule.MaxPercent, CategoryBoolean, true, nil},

	// datetime
	"future_date_percent": {"future_date_percent", "future_date_percent", rule.MaxPercent, CategoryDatetime, true, nil},

	// referential
	"foreign_key_found_percent": {"foreign_key_found_percent", "foreign_key_found_percent", rule.MinPercent, CategoryReferential, true, nil},

	// custom SQL
	"sql_aggregate_value":          {"sql_aggregate_value", "sql_aggregate_value", rule.MinMaxValue, CategoryCustomSQL, false, nil},
	"sql_condition_passed_percent": {"sql_condition_passed_percent", "sql_condition_passed_percent", rule.MinPercent, CategoryCustomSQL, false, nil},

	// cross-table / cross-source match
	"row_count_match_percent": {"row_count_match_percent", "row_count_match_percent", rule.MinPercent, CategoryCrossTable, false, nil},
	"sum_match_percent":       {"sum_match_percent", "sum_match_percent", rule.MinPercent, CategoryCrossSource, true, nil},
	"column_pair_comparison":  {"column_pair_comparison", "sum_match_percent", rule.MinPercent, CategoryCrossSource, true, nil},
}

// Lookup returns the CheckEntry for checkType, if registered.
func Lookup(checkType string) (CheckEntry, bool) {
	e, ok := registry[checkType]
	return e, ok
}

// All returns every registered entry, in no particular order.
func All() []CheckEntry {
	out := make([]CheckEntry, 0, len(registry))
	for _, e := range registry {
		out = append(out, e)
	}
	return out
}

// ByCategory returns every registered entry in the given category.
func ByCategory(cat Category) []CheckEntry {
	var out []CheckEntry
	for _, e := range registry {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// ColumnLevel returns every registered entry with IsColumnLevel == columnLevel.
func ColumnLevel(columnLevel bool) []CheckEntry {
	var out []CheckEntry
	for _, e := range registry {
		if e.IsColumnLevel == columnLevel {
			out = append(out, e)
		}
	}
	return out
}
