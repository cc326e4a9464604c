// Package query parses list filters and pagination parameters taken from
// the request query string.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted by date filters.
const DateLayout = "2006-01-02"

// ErrInvalidIDList is returned when a comma separated id list contains an
// element that is not a positive integer.
var ErrInvalidIDList = errors.New("invalid id list")

// ErrInvalidID is returned for a single malformed id.
var ErrInvalidID = errors.New("invalid id")

// ErrInvalidDate is returned when a date filter does not match DateLayout.
var ErrInvalidDate = errors.New("invalid date")

// ParseIDList parses "1,2, 3" into []uint64{1,2,3}.  An empty string yields
// nil so callers can treat it as "no constraint".  Duplicates are dropped
// while keeping first-seen order.
func ParseIDList(raw string) ([]uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	seen := make(map[uint64]struct{}, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIDList, p)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseID parses a single positive integer id.
func ParseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return d, nil
}
