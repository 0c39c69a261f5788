package usecase

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// cursor is the generic (timestamp, id) pagination token shared by every
// list operation in this package, the timestamp being the column that list
// is ordered by — encoded opaquely so callers never parse it themselves.
type cursor struct {
	T time.Time `json:"t"`
	I string    `json:"i"`
}

func encodeCursor(t time.Time, id string) string {
	b, _ := json.Marshal(cursor{T: t, I: id})
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (*time.Time, string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}
	var c cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, "", fmt.Errorf("unmarshal cursor: %w", err)
	}
	return &c.T, c.I, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
