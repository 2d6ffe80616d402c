package weather

import "strings"

// AdverseWindSpeedMPS is the wind threshold (~27 mph) above which any
// sample counts as adverse regardless of its condition text.
const AdverseWindSpeedMPS = 12.0

// adverseKeywords flag precipitation or storm conditions.
var adverseKeywords = []string{
	"rain", "snow", "thunder", "storm", "drizzle", "sleet", "hail",
}

// adverseIconPrefixes are the provider icon-code families for shower
// rain, rain, thunderstorm and snow.
var adverseIconPrefixes = []string{"09", "10", "11", "13"}

// IsAdverse reports whether a forecast sample indicates conditions that
// should influence re-optimization. Pure and total: a nil sample is
// never adverse.
func IsAdverse(s *Sample) bool {
	if s == nil {
		return false
	}

	cond := strings.ToLower(s.Condition)
	for _, kw := range adverseKeywords {
		if strings.Contains(cond, kw) {
			return true
		}
	}

	for _, prefix := range adverseIconPrefixes {
		if strings.HasPrefix(s.Icon, prefix) {
			return true
		}
	}

	return s.WindMPS >= AdverseWindSpeedMPS
}
