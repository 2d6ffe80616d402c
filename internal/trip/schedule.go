package trip

import (
	"strings"
	"time"
)

// minLegInterval is forced between depart and arrive when clamping
// collapses a leg to a zero or negative interval.
const minLegInterval = 30 * time.Minute

// legTimeLayouts are the accepted formats for planner-produced leg
// timestamps. Short tokens ("HH:MM") are handled separately.
var legTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

var shortTimeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04PM",
	"3:04 PM",
}

// ScheduledLeg pairs a leg with its resolved depart and arrive instants.
type ScheduledLeg struct {
	Leg    Leg
	Depart time.Time
	Arrive time.Time
}

// ResolveLegTimes derives a depart/arrive instant for every leg, even
// when the planner omitted or half-filled the timestamps. The output
// preserves leg order, has the same length as the input, and guarantees
// for each leg: depart >= window start, arrive <= window end, and
// arrive > depart. Deterministic and side-effect-free; this is the sole
// source of truth for "when does this leg happen" used by the overlays.
//
// Legs with no usable timestamps are assigned a uniform slot of the trip
// window; a lone depart or arrive is extended by one slot in the missing
// direction.
func ResolveLegTimes(req *Request, legs []Leg) []ScheduledLeg {
	start, end := req.Window()
	n := len(legs)
	if n == 0 {
		return nil
	}
	slot := end.Sub(start) / time.Duration(n)

	resolved := make([]ScheduledLeg, 0, n)
	for i, leg := range legs {
		dep, depOK := coerceLegTime(leg.DepartTime, start)
		arr, arrOK := coerceLegTime(leg.ArriveTime, start)

		switch {
		case !depOK && !arrOK:
			dep = start.Add(slot * time.Duration(i))
			arr = start.Add(slot * time.Duration(i+1))
		case depOK && !arrOK:
			arr = dep.Add(slot)
			if arr.After(end) {
				arr = end
			}
		case !depOK && arrOK:
			dep = arr.Add(-slot)
			if dep.Before(start) {
				dep = start
			}
		}

		if dep.Before(start) {
			dep = start
		}
		if arr.After(end) {
			arr = end
		}
		if !arr.After(dep) {
			arr = dep.Add(minLegInterval)
		}

		resolved = append(resolved, ScheduledLeg{Leg: leg, Depart: dep, Arrive: arr})
	}
	return resolved
}

// coerceLegTime parses a loosely formatted leg timestamp. Tokens of at
// most 8 characters are treated as a time of day on the trip's start
// date rather than a full date. Malformed tokens resolve to absent.
func coerceLegTime(s string, base time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if len(s) <= 8 {
		for _, layout := range shortTimeLayouts {
			if t, err := time.ParseInLocation(layout, strings.ToUpper(s), base.Location()); err == nil {
				return time.Date(base.Year(), base.Month(), base.Day(),
					t.Hour(), t.Minute(), t.Second(), 0, base.Location()), true
			}
		}
		return time.Time{}, false
	}

	for _, layout := range legTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, base.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
