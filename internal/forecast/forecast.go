// Package forecast maps a window of hourly observations through the scoring
// engine for one activity and shapes the result for presentation: hours
// grouped by venue-local day plus the best upcoming times. Nothing here is
// persisted; scores are recomputed on every request.
package forecast

import (
	"sort"
	"time"

	"github.com/feldcast/feldcast/internal/scoring"
	"github.com/feldcast/feldcast/internal/weather"
)

// bestTimesWindow bounds the best-times ranking to the next four days of
// hourly data.
const bestTimesWindow = 96

// DefaultBestTimes is how many top hours a forecast carries by default.
const DefaultBestTimes = 3

// ScoredHour is one observation with its activity score attached.
type ScoredHour struct {
	weather.Observation
	Activity scoring.Activity `json:"activity"`
	Score    int              `json:"score"`
	IsClosed bool             `json:"is_closed"`
	Label    string           `json:"label"`
}

// DayGroup holds the scored hours of one venue-local day.
type DayGroup struct {
	Day   string       `json:"day"`
	Hours []ScoredHour `json:"hours"`
}

// Forecast is the scored multi-day window for one activity.
type Forecast struct {
	Activity    scoring.Activity `json:"activity"`
	Hours       []ScoredHour     `json:"hours"`
	Days        []DayGroup       `json:"days"`
	BestTimes   []ScoredHour     `json:"best_times"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Build scores every hour for the activity and assembles day groups and the
// top-k best times relative to now.
func Build(engine *scoring.Engine, act scoring.Activity, hours []weather.Observation, now time.Time, k int) *Forecast {
	scored := ScoreHours(engine, act, hours)
	return &Forecast{
		Activity:    act,
		Hours:       scored,
		Days:        GroupByDay(scored, engine.Calendar().Location),
		BestTimes:   BestTimes(scored, now, k),
		GeneratedAt: now,
	}
}

// ScoreHours runs the engine over a window of observations. Each hour is
// independent, so callers may equally well do this concurrently; the
// engine holds no mutable state.
func ScoreHours(engine *scoring.Engine, act scoring.Activity, hours []weather.Observation) []ScoredHour {
	cal := engine.Calendar()
	out := make([]ScoredHour, 0, len(hours))
	for _, obs := range hours {
		t := obs.Time(cal.Location)
		closed := !cal.IsOpen(t.Hour(), t)
		score := engine.Score(act, obs)
		out = append(out, ScoredHour{
			Observation: obs,
			Activity:    act,
			Score:       score,
			IsClosed:    closed,
			Label:       ScoreLabel(score, closed),
		})
	}
	return out
}

// GroupByDay buckets scored hours by venue-local calendar day, preserving
// hour order within each day and day order across the window.
func GroupByDay(hours []ScoredHour, loc *time.Location) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)

	for _, h := range hours {
		day := h.Time(loc).Format("Mon Jan 2")
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Hours = append(groups[i].Hours, h)
	}
	return groups
}

// BestTimes ranks the next four days of hours by score and returns the top
// k. Past hours and zero-scored hours (closed, thunderstorm or simply
// terrible) never rank.
func BestTimes(hours []ScoredHour, now time.Time, k int) []ScoredHour {
	window := hours
	if len(window) > bestTimesWindow {
		window = window[:bestTimesWindow]
	}

	candidates := make([]ScoredHour, 0, len(window))
	for _, h := range window {
		if h.Score > 0 && h.Timestamp >= now.Unix() {
			candidates = append(candidates, h)
		}
	}

	// Stable keeps the earlier hour first among equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// ScoreLabel is the coarse presentation bucket for a score.
func ScoreLabel(score int, isClosed bool) string {
	switch {
	case isClosed:
		return "Closed"
	case score >= 70:
		return "Good"
	case score >= 35:
		return "Fair"
	default:
		return "Poor"
	}
}
