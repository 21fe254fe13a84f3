package convo

import (
	"regexp"
	"strings"

	"weatherbot-api/internal/geocode"
)

// The command grammar is an ordered list of matchers with explicit priority.
// Earlier matchers win; anything that falls through is unrecognized.

var (
	helpWords    = map[string]bool{"help": true, "?": true, "commands": true}
	weatherWords = map[string]bool{"weather": true, "wx": true, "forecast": true, "temp": true}

	inNowRe = regexp.MustCompile(`(?i)^\s*(?:i'?m|i\s+am)?\s*in\s+(.+?)\s+now\s*[.!]?\s*$`)
	metarRe = regexp.MustCompile(`(?i)^\s*metar\s+([a-z0-9]{3,4})\s*$`)
)

// ParseCommand classifies trimmed free text into exactly one Command variant.
// It is only consulted once onboarding is complete; during onboarding the
// input is the literal answer to the pending question.
func ParseCommand(text string) Command {
	normalized := geocode.NormalizeText(text)
	lower := strings.ToLower(strings.TrimRight(normalized, ".!"))

	if helpWords[lower] {
		return Command{Kind: CommandHelp}
	}
	if weatherWords[lower] {
		return Command{Kind: CommandWeatherNow}
	}
	if m := metarRe.FindStringSubmatch(normalized); m != nil {
		return Command{Kind: CommandMetar, Station: strings.ToUpper(m[1])}
	}
	if m := inNowRe.FindStringSubmatch(normalized); m != nil {
		if place := geocode.NormalizeText(m[1]); place != "" {
			return Command{Kind: CommandSetLocation, Place: place}
		}
	}
	if IsSchedulePhrase(normalized) {
		spec, err := ParseScheduleSpec(normalized)
		if err != nil {
			return Command{Kind: CommandSchedule, Malformed: err}
		}
		return Command{Kind: CommandSchedule, Spec: spec}
	}

	return Command{Kind: CommandUnrecognized}
}
