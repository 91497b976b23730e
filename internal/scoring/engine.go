// Package scoring turns one hour of weather into a 0-100 suitability score
// for each activity. The engine is a pure function of its inputs: no I/O,
// no shared mutable state, safe for concurrent use across hours and
// activities.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/feldcast/feldcast/internal/venue"
	"github.com/feldcast/feldcast/internal/weather"
)

const conditionThunderstorm = "Thunderstorm"

// Engine scores hourly observations against the configured activity
// profiles, gated by the venue calendar.
type Engine struct {
	profiles map[Activity]Profile
	cal      *venue.Calendar
}

// NewEngine validates the profile table and calendar once; scoring itself
// never re-checks configuration.
func NewEngine(profiles map[Activity]Profile, cal *venue.Calendar) (*Engine, error) {
	if err := ValidateProfiles(profiles); err != nil {
		return nil, fmt.Errorf("invalid scoring profiles: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid venue calendar: %w", err)
	}
	return &Engine{profiles: profiles, cal: cal}, nil
}

// Calendar returns the venue calendar the engine scores against.
func (e *Engine) Calendar() *venue.Calendar {
	return e.cal
}

// Score rates one hour for one activity, 0-100. A closed venue or a
// thunderstorm (by flag or condition label) short-circuits to 0 before any
// penalty is considered. All deductions are summed in floating point and
// rounded once at the end.
func (e *Engine) Score(act Activity, obs weather.Observation) int {
	p, ok := e.profiles[act]
	if !ok {
		return 0
	}

	t := obs.Time(e.cal.Location)
	hour := t.Hour()

	if !e.cal.IsOpen(hour, t) {
		return 0
	}
	if obs.HasThunderstorm || obs.Condition.Main == conditionThunderstorm {
		return 0
	}

	score := 100.0
	score -= rainPenalty(p.Rain, obs)
	score -= windPenalty(p.Wind, obs.WindSpeed)

	crowd := venue.CrowdFactor(hour, t.Weekday(), obs.Temp, obs.Condition.Main)
	score -= float64(crowd) * p.CrowdMultiplier

	score -= temperaturePenalty(p, obs.Temp)

	if obs.AirQuality != nil && float64(*obs.AirQuality) > p.AirQuality.Threshold {
		// Uncapped: valid categories 1-5 stay within range by configuration.
		excess := float64(*obs.AirQuality) - p.AirQuality.Threshold
		score -= math.Pow(excess/p.AirQuality.Range, p.AirQuality.Exponent) * p.AirQuality.MaxPenalty
	}

	if obs.UVIndex != nil && *obs.UVIndex > p.UV.Threshold {
		score -= rampPenalty(p.UV, *obs.UVIndex-p.UV.Threshold)
	}

	return int(math.Max(0, math.Min(100, math.Round(score))))
}

// rainPenalty layers two deductions: the probability ramp is the primary
// driver, and a flat malus applies on top when the condition label says it
// is actually raining right now.
func rainPenalty(c RainConfig, obs weather.Observation) float64 {
	var pen float64
	if obs.PrecipProb > c.Threshold {
		pen += math.Pow((obs.PrecipProb-c.Threshold)/(1-c.Threshold), c.Exponent) * c.MaxPenalty
	}
	if strings.Contains(strings.ToLower(obs.Condition.Main), "rain") {
		pen += c.ActiveMalus
	}
	return pen
}

func windPenalty(c WindConfig, windSpeed float64) float64 {
	if c.Model == WindZones {
		return zonePenalty(c.Zones, windSpeed)
	}
	if windSpeed > c.Ramp.Threshold {
		return rampPenalty(c.Ramp, windSpeed-c.Ramp.Threshold)
	}
	return 0
}

// zonePenalty is the kiting wind model. 5 m/s and 11 m/s both read as
// workable; only strictly above 11 is dangerous.
func zonePenalty(z ZonesConfig, windSpeed float64) float64 {
	switch {
	case windSpeed < z.TooLightThreshold:
		return z.TooLightPenalty
	case windSpeed >= z.WorkableMin && windSpeed <= z.WorkableMax:
		return 0
	case windSpeed > z.DangerousMin && windSpeed <= z.DangerousMax:
		return z.DangerousPenalty
	case windSpeed > z.VeryDangerousThreshold:
		return z.VeryDangerousPenalty
	}
	return 0
}

// temperaturePenalty applies cold and heat. With a ramped heat config the
// two checks are independent; with a flat heat config (kiting) heat is only
// considered when the cold branch did not fire.
func temperaturePenalty(p Profile, temp float64) float64 {
	if p.Heat.Flat {
		if temp < p.Cold.Threshold {
			return rampPenalty(p.Cold, p.Cold.Threshold-temp)
		}
		if temp > p.Heat.Threshold {
			return p.Heat.FlatPenalty
		}
		return 0
	}

	var pen float64
	if temp < p.Cold.Threshold {
		pen += rampPenalty(p.Cold, p.Cold.Threshold-temp)
	}
	if temp > p.Heat.Threshold {
		heat := RampConfig{MaxPenalty: p.Heat.MaxPenalty, Range: p.Heat.Range, Exponent: p.Heat.Exponent}
		pen += rampPenalty(heat, temp-p.Heat.Threshold)
	}
	return pen
}

// rampPenalty is the shared capped power ramp over the excess past a
// threshold.
func rampPenalty(c RampConfig, excess float64) float64 {
	return math.Min(c.MaxPenalty, math.Pow(excess/c.Range, c.Exponent)*c.MaxPenalty)
}
