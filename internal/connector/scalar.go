package connector

import (
	"database/sql"
	"time"
)

// toFloat64 coerces a driver-returned scalar into *float64, matching the
// non-numeric-observation handling: booleans become
// 0/1, datetimes become epoch seconds, NULL/unparseable values become nil.
// Used by every database/sql-backed dialect's ExecuteSensorSQL.
func toFloat64(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case int32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case bool:
		f := 0.0
		if t {
			f = 1.0
		}
		return &f
	case time.Time:
		f := float64(t.Unix())
		return &f
	case []byte:
		// database/sql drivers frequently surface NUMERIC/DECIMAL as []byte.
		var f float64
		if _, err := sqlScan(t, &f); err == nil {
			return &f
		}
		return nil
	case string:
		var f float64
		if _, err := sqlScan(t, &f); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

// sqlScan reuses database/sql's own numeric string conversion so this
// stays consistent with how the drivers themselves parse NUMERIC text.
func sqlScan(src any, dest *float64) (bool, error) {
	var ns sql.NullFloat64
	if err := ns.Scan(src); err != nil {
		return false, err
	}
	*dest = ns.Float64
	return ns.Valid, nil
}
