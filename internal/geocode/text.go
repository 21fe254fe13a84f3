package geocode

import (
	"regexp"
	"strings"
)

var cityStateRe = regexp.MustCompile(`^\s*([A-Za-z.\s'-]+?)\s*,\s*([A-Za-z]{2})\s*$`)

// NormalizeText collapses runs of whitespace and trims the ends
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseCityState splits "Davis, CA" into ("Davis", "CA"). Inputs without a
// two-letter state suffix return the whole text as the city and "".
func ParseCityState(loc string) (city, state string) {
	loc = NormalizeText(loc)
	if m := cityStateRe.FindStringSubmatch(loc); m != nil {
		return NormalizeText(m[1]), strings.ToUpper(m[2])
	}
	return loc, ""
}

// FormatCityState renders a stored descriptor as "City, ST" with the city
// title-cased and the state upper-cased.
func FormatCityState(label string) string {
	parts := strings.Split(label, ",")
	if len(parts) >= 2 {
		city := titleCase(strings.TrimSpace(parts[0]))
		state := strings.ToUpper(strings.TrimSpace(parts[1]))
		return city + ", " + state
	}
	return titleCase(label)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
