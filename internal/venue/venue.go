// Package venue models the seasonal opening hours and crowd behavior of
// Tempelhofer Feld. It is a leaf package: the scoring engine depends on it
// for openness and crowd inputs, nothing here reaches back out.
package venue

import (
	"fmt"
	"strings"
	"time"
)

// Period is one seasonal opening-hours window. A period whose StartMonth is
// later in the year than its EndMonth wraps across New Year (e.g. Oct-Mar).
type Period struct {
	Name       string     `yaml:"name"`
	StartMonth time.Month `yaml:"start_month"`
	EndMonth   time.Month `yaml:"end_month"`
	Open       int        `yaml:"open"`
	Close      int        `yaml:"close"`
}

// Calendar holds the ordered seasonal periods and the venue's timezone.
// Periods must cover all twelve months; Validate checks this once at startup.
type Calendar struct {
	Periods  []Period
	Location *time.Location
}

// DefaultCalendar returns the Tempelhofer Feld opening hours: summer
// (April-September) 6:00-22:00, winter (October-March) 7:00-21:00.
func DefaultCalendar() (*Calendar, error) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return nil, fmt.Errorf("failed to load venue timezone: %w", err)
	}

	return &Calendar{
		Periods: []Period{
			{Name: "Summer", StartMonth: time.April, EndMonth: time.September, Open: 6, Close: 22},
			{Name: "Winter", StartMonth: time.October, EndMonth: time.March, Open: 7, Close: 21},
		},
		Location: loc,
	}, nil
}

// Validate checks the calendar once at startup. Every month must be covered
// by some period and every open/close pair must be a sane hour range.
func (c *Calendar) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("venue calendar has no timezone")
	}
	if len(c.Periods) == 0 {
		return fmt.Errorf("venue calendar has no periods")
	}

	for _, p := range c.Periods {
		if p.StartMonth < time.January || p.StartMonth > time.December ||
			p.EndMonth < time.January || p.EndMonth > time.December {
			return fmt.Errorf("period %q has invalid months %d-%d", p.Name, p.StartMonth, p.EndMonth)
		}
		if p.Open < 0 || p.Open > 23 || p.Close < 0 || p.Close > 24 || p.Open >= p.Close {
			return fmt.Errorf("period %q has invalid hours %d-%d", p.Name, p.Open, p.Close)
		}
	}

	for m := time.January; m <= time.December; m++ {
		if _, ok := c.periodFor(m); !ok {
			return fmt.Errorf("venue calendar does not cover %s", m)
		}
	}
	return nil
}

func (c *Calendar) periodFor(month time.Month) (Period, bool) {
	for _, p := range c.Periods {
		if p.StartMonth <= p.EndMonth {
			if month >= p.StartMonth && month <= p.EndMonth {
				return p, true
			}
		} else {
			// Wraps across New Year, e.g. October-March.
			if month >= p.StartMonth || month <= p.EndMonth {
				return p, true
			}
		}
	}
	return Period{}, false
}

// OpeningHours returns the open and close hour (venue-local, 0-23) for the
// given date. The first matching period wins. A complete calendar always
// matches; the winter fallback only guards against broken configuration.
func (c *Calendar) OpeningHours(date time.Time) (open, close int) {
	if p, ok := c.periodFor(date.In(c.Location).Month()); ok {
		return p.Open, p.Close
	}
	return 7, 21
}

// IsOpen reports whether the venue is open at the given venue-local hour of
// the given date. The close hour itself is already closed.
func (c *Calendar) IsOpen(hour int, date time.Time) bool {
	open, close := c.OpeningHours(date)
	return hour >= open && hour < close
}

// CrowdFactor estimates how crowded the field is, 0-100, from time of day,
// day of week, temperature and the weather condition text. All adjustments
// are summed independently before clamping; the comfortable-weather bonus
// and the bad-weather deduction are not mutually exclusive branches.
//
// The "rain" check is a literal case-sensitive substring match on whatever
// text the caller passes, matching the condition labels the scoring engine
// hands through unmodified.
func CrowdFactor(hour int, day time.Weekday, temp float64, condition string) int {
	score := 0

	if day == time.Saturday || day == time.Sunday {
		score += 30
	}

	switch {
	case hour >= 11 && hour <= 18:
		score += 25
	case hour >= 9 && hour < 11:
		score += 15
	case hour > 18 && hour <= 20:
		score += 15
	}

	if temp > 15 && temp < 25 && !strings.Contains(condition, "rain") {
		score += 20
	}
	if strings.Contains(condition, "rain") || temp < 5 || temp > 30 {
		score -= 20
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
