package convo

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"weatherbot-api/internal/common"
)

var (
	// ErrBadClockTime is a user-correctable time-token failure
	ErrBadClockTime = errors.New(`could not read that time; use a format like "7am" or "7:30pm"`)
	// ErrBadRecurrence is a missing or unknown recurrence keyword
	ErrBadRecurrence = errors.New(`say how often: "everyday", "daily" or "once"`)
)

var (
	schedulePhraseRe = regexp.MustCompile(`(?i)\b(?:send|schedule)\s+(?:me\s+)?(?:the\s+)?weather\s+at\s+`)
	scheduleTailRe   = regexp.MustCompile(`(?i)\bat\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)\s*([a-z]*)`)
	clockTimeRe      = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
)

// IsSchedulePhrase reports whether text looks like a schedule command at
// all. A match with an unparseable tail is a format error, not an
// unrecognized command.
func IsSchedulePhrase(text string) bool {
	return schedulePhraseRe.MatchString(text)
}

// ParseClockTime parses a 12-hour time token like "7am" or "7:30pm" into
// 24-hour (hour, minute). The am/pm suffix is mandatory; the minute part
// defaults to zero.
func ParseClockTime(token string) (int, int, error) {
	m := clockTimeRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, 0, ErrBadClockTime
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, ErrBadClockTime
	}

	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return 0, 0, ErrBadClockTime
		}
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	return hour, minute, nil
}

// ParseScheduleSpec extracts (time-of-day, recurrence) from a schedule
// phrase. The caller has already established via IsSchedulePhrase that the
// text is a schedule command.
func ParseScheduleSpec(text string) (*ScheduleSpec, error) {
	m := scheduleTailRe.FindStringSubmatch(text)
	if m == nil {
		return nil, ErrBadClockTime
	}

	hour, minute, err := ParseClockTime(m[1])
	if err != nil {
		return nil, err
	}

	var recurrence common.RecurrenceKind
	switch strings.ToLower(m[2]) {
	case "everyday", "daily":
		recurrence = common.RecurrenceDaily
	case "once":
		recurrence = common.RecurrenceOneTime
	default:
		return nil, ErrBadRecurrence
	}

	return &ScheduleSpec{Hour: hour, Minute: minute, Recurrence: recurrence}, nil
}
