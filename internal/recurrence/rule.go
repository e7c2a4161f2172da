package recurrence

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	dtstartProperty = "DTSTART"
	rruleProperty   = "RRULE"
)

// Rule is a parsed recurrence rule anchored at a start instant in a template location
type Rule struct {
	source   string
	location *time.Location
	rule     *rrule.RRule
}

// Parse parses a recurrence rule that carries its own DTSTART. Accepted forms are
// "DTSTART:<datetime> RRULE:<rule>" with a space or newline between the parts, and
// "DTSTART;TZID=<zone>:<datetime>" in place of the plain DTSTART.
func Parse(rule, timezone string) (*Rule, error) {
	return ParseAt(rule, timezone, time.Time{})
}

// ParseAt parses a recurrence rule, using anchor as DTSTART when the rule has none.
// The rule part may be given as "RRULE:FREQ=..." or as a bare "FREQ=...".
func ParseAt(rule, timezone string, anchor time.Time) (*Rule, error) {
	loc, err := LoadZone(timezone)
	if err != nil {
		return nil, &InvalidRuleError{Rule: rule, Err: err}
	}

	dtstartValue, ruleValue, err := splitRule(rule)
	if err != nil {
		return nil, err
	}

	opt, err := rrule.StrToROptionInLocation(ruleValue, loc)
	if err != nil {
		return nil, &InvalidRuleError{Rule: rule, Err: err}
	}

	switch {
	case dtstartValue != "":
		dtstart, err := rrule.StrToDtStart(dtstartValue, loc)
		if err != nil {
			return nil, &InvalidRuleError{Rule: rule, Err: err}
		}
		opt.Dtstart = dtstart
	case !opt.Dtstart.IsZero():
	case !anchor.IsZero():
		opt.Dtstart = anchor
	default:
		return nil, invalidRule(rule, "missing %s", dtstartProperty)
	}

	// The series is generated on floating wall-clock times and placed in loc afterwards,
	// so daylight-saving transitions never shift the time of day.
	opt.Dtstart = floating(opt.Dtstart.In(loc))
	if !opt.Until.IsZero() {
		opt.Until = floating(opt.Until.In(loc))
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, &InvalidRuleError{Rule: rule, Err: err}
	}

	return &Rule{source: rule, location: loc, rule: r}, nil
}

func splitRule(rule string) (dtstart, body string, err error) {
	for _, field := range strings.Fields(rule) {
		upper := strings.ToUpper(field)
		switch {
		case strings.HasPrefix(upper, dtstartProperty+":") || strings.HasPrefix(upper, dtstartProperty+";"):
			if dtstart != "" {
				return "", "", invalidRule(rule, "duplicate %s", dtstartProperty)
			}
			// TZID values are case sensitive, keep the original field.
			dtstart = field[len(dtstartProperty)+1:]
		case strings.HasPrefix(upper, rruleProperty+":"):
			if body != "" {
				return "", "", invalidRule(rule, "multiple %s properties", rruleProperty)
			}
			body = upper[len(rruleProperty)+1:]
		case strings.Contains(upper, "=") && !strings.Contains(upper, ":"):
			if body != "" {
				return "", "", invalidRule(rule, "multiple %s properties", rruleProperty)
			}
			body = upper
		default:
			return "", "", invalidRule(rule, "unsupported property %q", field)
		}
	}
	if body == "" {
		return "", "", invalidRule(rule, "missing %s", rruleProperty)
	}
	return dtstart, body, nil
}

// Location returns the location candidates are rendered in
func (r *Rule) Location() *time.Location {
	return r.location
}

// DTStart returns the first instant of the series
func (r *Rule) DTStart() time.Time {
	return ResolveWall(r.rule.OrigOptions.Dtstart, r.location)
}

// String returns the rule as it was given
func (r *Rule) String() string {
	return r.source
}

// Iterator returns a fresh iterator positioned before the first candidate
func (r *Rule) Iterator() *Iterator {
	return &Iterator{next: r.rule.Iterator(), location: r.location}
}

// Iterator yields the candidates of a rule in ascending order. It is not safe for
// concurrent use.
type Iterator struct {
	next     rrule.Next
	location *time.Location
	last     time.Time
	done     bool
}

// Next returns the next candidate, or false once the series is exhausted. Two wall
// times that resolve to the same instant across a daylight-saving gap yield one candidate.
func (it *Iterator) Next() (time.Time, bool) {
	if it.done {
		return time.Time{}, false
	}
	for {
		wall, ok := it.next()
		if !ok {
			it.done = true
			return time.Time{}, false
		}
		t := ResolveWall(wall, it.location)
		if !it.last.IsZero() && !t.After(it.last) {
			continue
		}
		it.last = t
		return t, true
	}
}
