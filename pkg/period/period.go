// Package period parses the publication-period filters accepted by the
// query methods.
//
// A period is written as:
//
//	all                 no restriction (also the empty string)
//	2021                the whole year 2021
//	03/2021             January 1st 2021 up to March 31st 2021
//	15/03/2021          January 1st 2021 up to March 15th 2021
//	2019-2021           January 1st 2019 up to December 31st 2021
//	01/2019..06/2020    January 1st 2019 up to June 30th 2020
//
// Dates are day-first. A single value covers the start of its year up to
// the value itself; in ranges the start is rounded down and the end up.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
)

// Period is an inclusive time interval. The zero Start and the maximum End
// mean unbounded.
type Period struct {
	Start time.Time
	End   time.Time
}

var maxTime = time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)

// All returns the unbounded period.
func All() Period {
	return Period{End: maxTime}
}

// IsAll reports whether p places no restriction.
func (p Period) IsAll() bool {
	return p.Start.IsZero() && (p.End.IsZero() || p.End.Equal(maxTime))
}

// Contains reports whether t lies within p, bounds included.
func (p Period) Contains(t time.Time) bool {
	if p.IsAll() {
		return true
	}
	return !t.Before(p.Start) && !t.After(p.End)
}

// String renders p as "YYYY-MM-DD..YYYY-MM-DD", or "all".
func (p Period) String() string {
	if p.IsAll() {
		return "all"
	}
	return fmt.Sprintf("%s..%s", p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}

// Parse parses a period expression; see the package documentation.
func Parse(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return All(), nil
	}

	if from, to, ok := splitRange(s); ok {
		start, err := ParseDate(from, false)
		if err != nil {
			return Period{}, invalid(s, err)
		}
		end, err := ParseDate(to, true)
		if err != nil {
			return Period{}, invalid(s, err)
		}
		if end.Before(start) {
			return Period{}, apierrors.New(apierrors.ErrCodeInvalidPeriod, "period %q ends before it starts", s)
		}
		return Period{Start: start, End: end}, nil
	}

	end, err := ParseDate(s, true)
	if err != nil {
		return Period{}, invalid(s, err)
	}
	start := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: end}, nil
}

// MustParse is like Parse but panics on error. For constants in tests and
// examples.
func MustParse(s string) Period {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// splitRange splits "A..B", or "A-B" when s holds exactly one hyphen and
// is not an ISO month. ISO dates (2021-03-15) and months (2021-03) are
// single values.
func splitRange(s string) (from, to string, ok bool) {
	if from, to, ok = strings.Cut(s, ".."); ok {
		return strings.TrimSpace(from), strings.TrimSpace(to), true
	}
	if _, err := time.Parse("2006-01", s); err == nil {
		return "", "", false
	}
	if strings.Count(s, "-") == 1 {
		from, to, _ = strings.Cut(s, "-")
		return strings.TrimSpace(from), strings.TrimSpace(to), true
	}
	return "", "", false
}

func invalid(s string, err error) error {
	return apierrors.Wrap(apierrors.ErrCodeInvalidPeriod, err, "invalid period %q (use all, 2021, 2019-2021 or DD/MM/YYYY..DD/MM/YYYY)", s)
}

var partialLayouts = []struct {
	layout string
	unit   string
}{
	{"2006", "year"},
	{"01/2006", "month"},
	{"1/2006", "month"},
	{"2006-01", "month"},
	{"02/01/2006", "day"},
	{"2/1/2006", "day"},
	{"2006-01-02", "day"},
}

// ParseDate parses a single date, day-first. For values lacking a month or
// day, preferLast selects the last instant of the period they name instead
// of the first: "2021" is December 31st 2021 23:59:59 with preferLast.
// Full timestamps are returned as given.
func ParseDate(s string, preferLast bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, l := range partialLayouts {
		t, err := time.ParseInLocation(l.layout, s, time.UTC)
		if err != nil {
			continue
		}
		if !preferLast {
			return t, nil
		}
		switch l.unit {
		case "year":
			return t.AddDate(1, 0, 0).Add(-time.Nanosecond), nil
		case "month":
			return t.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
		default:
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
