package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Regional is the fixed wall-clock zone recurrence rules and user-facing
// times are expressed in. UTC+2, no daylight saving.
var Regional = time.FixedZone("CAT", 2*60*60)

// ErrInvalidRule indicates a weekday name or time-of-day that cannot be parsed.
var ErrInvalidRule = errors.New("recurrence: invalid rule")

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NextOccurrence computes the next occurrence of a weekly rule strictly after
// now. The rule's wall clock is interpreted in Regional; the result is UTC.
// When the rule's weekday equals now's weekday the occurrence is a full week
// out, never later the same day: the evaluator runs right after a session
// ends, so the current day's slot has already happened.
func NextOccurrence(day, timeOfDay string, now time.Time) (time.Time, error) {
	target, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRule, day)
	}

	hour, minute, second, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(Regional)
	daysUntil := int(target) - int(local.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	next := time.Date(local.Year(), local.Month(), local.Day()+daysUntil,
		hour, minute, second, 0, Regional)
	return next.UTC(), nil
}

func parseTimeOfDay(s string) (hour, minute, second int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: malformed time %q", ErrInvalidRule, s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidRule, s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidRule, s)
	}
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, 0, 0, fmt.Errorf("%w: bad second in %q", ErrInvalidRule, s)
		}
	}
	return hour, minute, second, nil
}

// FormatRegional renders an instant as a user-facing wall-clock string in the
// Regional zone. Used by notification templates.
func FormatRegional(t time.Time) string {
	return t.In(Regional).Format("Monday, 2 Jan 2006 at 15:04")
}
