package showcase

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts a plain calendar date or an RFC3339 timestamp. Dates
// without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Errorf("Invalid date %q", s)
}

// CalculateDuration returns the whole number of days between start and end,
// rounded up. Order does not matter.
func CalculateDuration(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}

	return int(math.Ceil(diff.Hours() / 24))
}
