package trip

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Trip window bounds in hours. A request can never span less than one
// hour or more than a full day.
const (
	minWindowHours = 1
	maxWindowHours = 24
)

// startTimeLayouts are the accepted timezone-naive local formats.
var startTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// durationPattern tolerates "7", "7h", "7.5 hours", "1 day", "2d".
// Magnitude and unit are both optional; the unit defaults to hours.
var durationPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)?\s*(d(?:ay)?s?|h(?:our)?s?)?$`)

// modeAliases maps accepted spellings onto canonical modes.
var modeAliases = map[string]string{
	"subway":  ModeSubway,
	"subways": ModeSubway,
	"walk":    ModeWalk,
	"walking": ModeWalk,
}

// NewRequest validates a raw trip request and derives the canonical
// [start, end) window. The derivation happens exactly once here; the
// returned Request is treated as immutable by the rest of the pipeline.
func NewRequest(raw RawRequest) (*Request, error) {
	modes, err := normalizeModes(raw.TransportModes)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw.StartTime) == "" {
		return nil, ErrStartTimeRequired
	}
	start, ok := parseLocalTime(raw.StartTime)
	if !ok {
		return nil, ErrInvalidStartTime
	}

	hours := parseDurationHours(raw.TripDuration)
	end := start.Add(time.Duration(hours) * time.Hour)

	return &Request{
		StartLocation:        strings.TrimSpace(raw.StartLocation),
		EndLocation:          strings.TrimSpace(raw.EndLocation),
		TransportModes:       modes,
		StartTime:            start,
		EndTime:              end,
		TripDuration:         raw.TripDuration,
		WheelchairAccessible: raw.WheelchairAccessible,
		Cuisines:             raw.Cuisines,
		DietPreferences:      raw.DietPreferences,
		ActivityPreferences:  raw.ActivityPreferences,
		BudgetPreferences:    raw.BudgetPreferences,
	}, nil
}

// normalizeModes validates modes against the allow-list and resolves
// accepted aliases. Unsupported modes are a hard input error reporting
// every offender.
func normalizeModes(modes []string) ([]string, error) {
	if len(modes) == 0 {
		return nil, ErrNoTransportModes
	}

	normalized := make([]string, 0, len(modes))
	var bad []string
	for _, m := range modes {
		canonical, ok := modeAliases[strings.ToLower(strings.TrimSpace(m))]
		if !ok {
			bad = append(bad, m)
			continue
		}
		normalized = append(normalized, canonical)
	}
	if len(bad) > 0 {
		return nil, &UnsupportedModeError{Modes: bad}
	}
	return normalized, nil
}

// parseLocalTime parses a timezone-naive local timestamp.
func parseLocalTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDurationHours parses free-form duration text into whole hours,
// rounded and clamped to [1, 24]. A missing or unparseable magnitude
// falls back to the maximum window rather than failing the request.
func parseDurationHours(text string) int {
	hours := float64(maxWindowHours)

	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed != "" {
		m := durationPattern.FindStringSubmatch(trimmed)
		if m != nil && m[1] != "" {
			val, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				if strings.HasPrefix(m[2], "d") {
					val *= 24
				}
				hours = val
			}
		}
	}

	rounded := int(math.Round(hours))
	if rounded < minWindowHours {
		return minWindowHours
	}
	if rounded > maxWindowHours {
		return maxWindowHours
	}
	return rounded
}
