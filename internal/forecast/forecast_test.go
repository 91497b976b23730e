package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feldcast/feldcast/internal/scoring"
	"github.com/feldcast/feldcast/internal/venue"
	"github.com/feldcast/feldcast/internal/weather"
)

func newTestEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	cal, err := venue.DefaultCalendar()
	require.NoError(t, err)
	engine, err := scoring.NewEngine(scoring.DefaultProfiles(), cal)
	require.NoError(t, err)
	return engine
}

// hourAt builds a pleasant observation at the given Berlin time.
func hourAt(t *testing.T, engine *scoring.Engine, at time.Time) weather.Observation {
	t.Helper()
	uvi := 2.0
	aqi := 1
	return weather.Observation{
		Timestamp:  at.Unix(),
		Temp:       20,
		WindSpeed:  2,
		PrecipProb: 0.1,
		UVIndex:    &uvi,
		AirQuality: &aqi,
		Condition:  weather.Condition{Main: "Clear", Description: "clear sky"},
	}
}

func TestScoreHours_LabelsAndClosedFlag(t *testing.T) {
	engine := newTestEngine(t)
	loc := engine.Calendar().Location

	open := time.Date(2024, time.June, 12, 14, 0, 0, 0, loc)
	closed := time.Date(2024, time.June, 12, 5, 0, 0, 0, loc)

	hours := []weather.Observation{
		hourAt(t, engine, open),
		hourAt(t, engine, closed),
	}

	scored := ScoreHours(engine, scoring.Cycling, hours)
	require.Len(t, scored, 2)

	assert.Equal(t, scoring.Cycling, scored[0].Activity)
	assert.False(t, scored[0].IsClosed)
	assert.Greater(t, scored[0].Score, 75)
	assert.Equal(t, "Good", scored[0].Label)

	assert.True(t, scored[1].IsClosed)
	assert.Equal(t, 0, scored[1].Score)
	assert.Equal(t, "Closed", scored[1].Label)
}

func TestGroupByDay(t *testing.T) {
	engine := newTestEngine(t)
	loc := engine.Calendar().Location

	var hours []weather.Observation
	// 14:00 and 15:00 Wednesday, then 10:00 Thursday.
	for _, at := range []time.Time{
		time.Date(2024, time.June, 12, 14, 0, 0, 0, loc),
		time.Date(2024, time.June, 12, 15, 0, 0, 0, loc),
		time.Date(2024, time.June, 13, 10, 0, 0, 0, loc),
	} {
		hours = append(hours, hourAt(t, engine, at))
	}

	scored := ScoreHours(engine, scoring.Jogging, hours)
	groups := GroupByDay(scored, loc)

	require.Len(t, groups, 2)
	assert.Equal(t, "Wed Jun 12", groups[0].Day)
	assert.Len(t, groups[0].Hours, 2)
	assert.Equal(t, "Thu Jun 13", groups[1].Day)
	assert.Len(t, groups[1].Hours, 1)
}

func TestBestTimes(t *testing.T) {
	engine := newTestEngine(t)
	loc := engine.Calendar().Location
	now := time.Date(2024, time.June, 12, 12, 0, 0, 0, loc)

	past := hourAt(t, engine, now.Add(-2*time.Hour))
	good := hourAt(t, engine, now.Add(2*time.Hour))
	windy := hourAt(t, engine, now.Add(3*time.Hour))
	windy.WindSpeed = 10
	stormy := hourAt(t, engine, now.Add(4*time.Hour))
	stormy.HasThunderstorm = true

	scored := ScoreHours(engine, scoring.Cycling, []weather.Observation{past, good, windy, stormy})

	best := BestTimes(scored, now, 2)
	require.Len(t, best, 2)
	assert.Equal(t, good.Timestamp, best[0].Timestamp, "highest score first")
	assert.Equal(t, windy.Timestamp, best[1].Timestamp)

	for _, h := range best {
		assert.GreaterOrEqual(t, h.Timestamp, now.Unix(), "past hours never rank")
		assert.Greater(t, h.Score, 0, "zero-scored hours never rank")
	}
}

func TestBestTimes_WindowBound(t *testing.T) {
	engine := newTestEngine(t)
	loc := engine.Calendar().Location
	now := time.Date(2024, time.June, 12, 0, 0, 0, 0, loc)

	// 5 days of hourly data; the best hour of day 5 is outside the
	// 96-hour ranking window.
	var hours []weather.Observation
	for i := 0; i < 120; i++ {
		obs := hourAt(t, engine, now.Add(time.Duration(i)*time.Hour))
		obs.WindSpeed = 6 // mildly windy everywhere...
		hours = append(hours, obs)
	}
	hours[110].WindSpeed = 0 // ...except one perfect hour on day 5

	scored := ScoreHours(engine, scoring.Cycling, hours)
	best := BestTimes(scored, now, 3)

	require.NotEmpty(t, best)
	for _, h := range best {
		assert.Less(t, h.Timestamp, now.Add(bestTimesWindow*time.Hour).Unix())
	}
}

func TestBuild(t *testing.T) {
	engine := newTestEngine(t)
	loc := engine.Calendar().Location
	now := time.Date(2024, time.June, 12, 12, 0, 0, 0, loc)

	var hours []weather.Observation
	for i := 0; i < 48; i++ {
		hours = append(hours, hourAt(t, engine, now.Add(time.Duration(i)*time.Hour)))
	}

	fc := Build(engine, scoring.Kiting, hours, now, 3)

	assert.Equal(t, scoring.Kiting, fc.Activity)
	assert.Len(t, fc.Hours, 48)
	assert.Len(t, fc.Days, 3, "48 hours starting at noon span three calendar days")
	assert.Len(t, fc.BestTimes, 3)
	assert.Equal(t, now, fc.GeneratedAt)
}

func TestScoreLabel(t *testing.T) {
	tests := []struct {
		score    int
		isClosed bool
		want     string
	}{
		{90, false, "Good"},
		{70, false, "Good"},
		{69, false, "Fair"},
		{35, false, "Fair"},
		{34, false, "Poor"},
		{0, false, "Poor"},
		{90, true, "Closed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreLabel(tt.score, tt.isClosed))
	}
}
