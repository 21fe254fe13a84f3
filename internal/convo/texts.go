package convo

import (
	"fmt"
	"strings"
	"time"
)

const helpText = `Commands:
- help / ?                               Show this help
- weather / wx                           Get your current forecast (based on saved location)
- metar <station>                        Get an aviation weather report (e.g., metar KSMF)
- I'm in <place> now                     Update your location and get a forecast
- send me the weather at 7am everyday    Schedule daily weather reports

Location examples (city/state is enough):
- I'm in Davis, CA now
- I'm in Seattle, WA now
- I'm in Paris now

Schedule examples:
- send me the weather at 7am everyday
- send me the weather at 7:30pm daily
- send me the weather at 7am once`

const askLocationText = `What city and state are you in? (e.g., Davis, CA)`

// TimeOfDayGreeting returns a greeting matching the local hour
func TimeOfDayGreeting(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "Good morning!"
	case h >= 12 && h < 17:
		return "Good afternoon!"
	case h >= 17:
		return "Good evening!"
	default:
		return "Good god it's late!"
	}
}

// HumanElapsed formats a duration like "2 hours, 5 minutes"
func HumanElapsed(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	units := []struct {
		label string
		size  int64
	}{
		{"month", 30 * 24 * 3600},
		{"week", 7 * 24 * 3600},
		{"day", 24 * 3600},
		{"hour", 3600},
		{"minute", 60},
	}

	var parts []string
	for _, u := range units {
		if seconds >= u.size {
			n := seconds / u.size
			seconds %= u.size
			label := u.label
			if n != 1 {
				label += "s"
			}
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}

	if len(parts) == 0 {
		return "less than a minute"
	}
	return strings.Join(parts, ", ")
}

// LastContactLine formats the footer appended to weather replies when the
// previous inbound message is old enough to be worth mentioning:
// "[ Last contact: 14:05 PST  23 mins ago / 1712345678 ]".
// Returns "" when the gap is under a minute.
func LastContactLine(lastIncoming, now time.Time) string {
	gap := now.Sub(lastIncoming)
	if gap < time.Minute {
		return ""
	}

	local := lastIncoming.Local()
	tzAbbr := local.Format("MST")

	var relative string
	hours := int(gap / time.Hour)
	mins := int(gap/time.Minute) % 60
	switch {
	case hours >= 2 && mins > 0:
		relative = fmt.Sprintf("%d hours %d mins", hours, mins)
	case hours >= 2:
		relative = fmt.Sprintf("%d hours", hours)
	default:
		relative = fmt.Sprintf("%d mins", int(gap/time.Minute))
	}

	return fmt.Sprintf("[ Last contact: %s %s  %s ago / %d ]",
		local.Format("15:04"), tzAbbr, relative, lastIncoming.Unix())
}
