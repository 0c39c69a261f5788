package checkregistry

// LegacyExpectation is a dialect-neutral Great-Expectations-style
// description of a CheckType that has no native registry entry, used only by
// the executor's fallback path.
type LegacyExpectation struct {
	CheckType   string
	Expectation string // e.g. "column_values_not_null", "column_values_in_set"
	Mostly      float64
}

// legacy holds CheckType names that are recognized but have no native
// sensor/rule pairing, so they route through the fallback evaluator
// instead of the executor's normal sensor+rule path.
var legacy = map[string]LegacyExpectation{
	"not_null":            {"not_null", "column_values_not_null", 1.0},
	"allowed_values":      {"allowed_values", "column_values_in_set", 1.0},
	"table_row_count_trend": {"table_row_count_trend", "table_row_count_to_be_between", 1.0},
	"column_type_check":   {"column_type_check", "column_values_to_be_of_type", 1.0},
}

// LookupLegacy returns the fallback expectation for checkType, if any.
func LookupLegacy(checkType string) (LegacyExpectation, bool) {
	e, ok := legacy[checkType]
	return e, ok
}
