package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Activity identifies one of the supported activity profiles.
type Activity string

const (
	Cycling     Activity = "cycling"
	Jogging     Activity = "jogging"
	Kiting      Activity = "kiting"
	Socializing Activity = "socializing"
)

// Activities returns all supported activities in display order.
func Activities() []Activity {
	return []Activity{Cycling, Jogging, Kiting, Socializing}
}

// ParseActivity validates an activity name from an external caller.
func ParseActivity(s string) (Activity, error) {
	switch Activity(s) {
	case Cycling, Jogging, Kiting, Socializing:
		return Activity(s), nil
	}
	return "", fmt.Errorf("unknown activity %q", s)
}

// WindModel selects one of the two wind-penalty implementations.
type WindModel string

const (
	// WindRamp is the monotonic penalty ramp above a threshold, used by
	// activities that merely tolerate wind.
	WindRamp WindModel = "ramp"
	// WindZones is the kiting model: wind is necessary, so the penalty is
	// zone-based with an interior no-penalty band.
	WindZones WindModel = "zones"
)

// RainConfig drives the rain penalty: a power ramp over precipitation
// probability past Threshold, plus a flat ActiveMalus deducted when the
// condition label indicates it is actually raining.
type RainConfig struct {
	Threshold   float64 `yaml:"threshold"`
	MaxPenalty  float64 `yaml:"max_penalty"`
	Exponent    float64 `yaml:"exponent"`
	ActiveMalus float64 `yaml:"active_malus"`
}

// RampConfig is the shared shape for threshold-and-ramp penalties: deduct
// min(MaxPenalty, ((excess)/Range)^Exponent * MaxPenalty) past Threshold.
type RampConfig struct {
	Threshold  float64 `yaml:"threshold"`
	MaxPenalty float64 `yaml:"max_penalty"`
	Range      float64 `yaml:"range"`
	Exponent   float64 `yaml:"exponent"`
}

// ZonesConfig is the kiting wind model. Boundary placement matters: exactly
// WorkableMin and exactly DangerousMin both fall in the workable band.
// The optimal sub-band is informational only and carries no bonus.
type ZonesConfig struct {
	TooLightThreshold      float64 `yaml:"too_light_threshold"`
	TooLightPenalty        float64 `yaml:"too_light_penalty"`
	OptimalMin             float64 `yaml:"optimal_min"`
	OptimalMax             float64 `yaml:"optimal_max"`
	WorkableMin            float64 `yaml:"workable_min"`
	WorkableMax            float64 `yaml:"workable_max"`
	DangerousMin           float64 `yaml:"dangerous_min"`
	DangerousMax           float64 `yaml:"dangerous_max"`
	DangerousPenalty       float64 `yaml:"dangerous_penalty"`
	VeryDangerousThreshold float64 `yaml:"very_dangerous_threshold"`
	VeryDangerousPenalty   float64 `yaml:"very_dangerous_penalty"`
}

// WindConfig carries both wind models; Model selects which one applies.
type WindConfig struct {
	Model WindModel   `yaml:"model"`
	Ramp  RampConfig  `yaml:"ramp"`
	Zones ZonesConfig `yaml:"zones"`
}

// HeatConfig is the heat penalty. Flat switches from the shared ramp shape
// to a constant FlatPenalty above Threshold; a flat heat penalty is also
// mutually exclusive with the cold penalty (kiting).
type HeatConfig struct {
	Threshold   float64 `yaml:"threshold"`
	MaxPenalty  float64 `yaml:"max_penalty"`
	Range       float64 `yaml:"range"`
	Exponent    float64 `yaml:"exponent"`
	Flat        bool    `yaml:"flat"`
	FlatPenalty float64 `yaml:"flat_penalty"`
}

// Profile bundles the penalty-curve parameters for one activity. All
// penalty magnitudes are stored positive and deducted from the baseline.
type Profile struct {
	Rain            RainConfig `yaml:"rain"`
	Wind            WindConfig `yaml:"wind"`
	CrowdMultiplier float64    `yaml:"crowd_multiplier"`
	Cold            RampConfig `yaml:"cold"`
	Heat            HeatConfig `yaml:"heat"`
	AirQuality      RampConfig `yaml:"air_quality"`
	UV              RampConfig `yaml:"uv"`
}

// DefaultProfiles returns the built-in configuration table. The numbers are
// tuned against the venue and must stay byte-for-byte stable for output
// compatibility; new tunings go through a profile override file instead.
func DefaultProfiles() map[Activity]Profile {
	return map[Activity]Profile{
		Cycling: {
			Rain: RainConfig{Threshold: 0.2, MaxPenalty: 25, Exponent: 1.5, ActiveMalus: 20},
			Wind: WindConfig{
				Model: WindRamp,
				Ramp:  RampConfig{Threshold: 3, MaxPenalty: 40, Range: 7, Exponent: 1.3},
			},
			CrowdMultiplier: 0.25,
			Cold:            RampConfig{Threshold: 12, MaxPenalty: 40, Range: 12, Exponent: 1.2},
			Heat:            HeatConfig{Threshold: 24, MaxPenalty: 30, Range: 11, Exponent: 1.3},
			AirQuality:      RampConfig{Threshold: 1, MaxPenalty: 35, Range: 4, Exponent: 1.4},
			UV:              RampConfig{Threshold: 3, MaxPenalty: 20, Range: 6, Exponent: 1.2},
		},
		Jogging: {
			Rain: RainConfig{Threshold: 0.3, MaxPenalty: 18, Exponent: 1.5, ActiveMalus: 12},
			Wind: WindConfig{
				Model: WindRamp,
				Ramp:  RampConfig{Threshold: 5, MaxPenalty: 15, Range: 8, Exponent: 1.2},
			},
			CrowdMultiplier: 0.1,
			Cold:            RampConfig{Threshold: 10, MaxPenalty: 20, Range: 10, Exponent: 1.1},
			Heat:            HeatConfig{Threshold: 22, MaxPenalty: 35, Range: 10, Exponent: 1.4},
			AirQuality:      RampConfig{Threshold: 1, MaxPenalty: 35, Range: 4, Exponent: 1.4},
			UV:              RampConfig{Threshold: 3, MaxPenalty: 25, Range: 7, Exponent: 1.3},
		},
		Kiting: {
			Rain: RainConfig{Threshold: 0.3, MaxPenalty: 20, Exponent: 1.5, ActiveMalus: 15},
			Wind: WindConfig{
				Model: WindZones,
				Zones: ZonesConfig{
					TooLightThreshold:      5,
					TooLightPenalty:        50,
					OptimalMin:             7,
					OptimalMax:             9,
					WorkableMin:            5,
					WorkableMax:            11,
					DangerousMin:           11,
					DangerousMax:           13,
					DangerousPenalty:       25,
					VeryDangerousThreshold: 13,
					VeryDangerousPenalty:   50,
				},
			},
			CrowdMultiplier: 0.35, // highest of all four: kites need safety space
			Cold:            RampConfig{Threshold: 10, MaxPenalty: 40, Range: 10, Exponent: 1.4},
			Heat:            HeatConfig{Threshold: 30, Flat: true, FlatPenalty: 10},
			AirQuality:      RampConfig{Threshold: 2, MaxPenalty: 15, Range: 3, Exponent: 1.3},
			UV:              RampConfig{Threshold: 4, MaxPenalty: 20, Range: 6, Exponent: 1.2},
		},
		Socializing: {
			Rain: RainConfig{Threshold: 0.2, MaxPenalty: 35, Exponent: 1.6, ActiveMalus: 20},
			Wind: WindConfig{
				Model: WindRamp,
				Ramp:  RampConfig{Threshold: 3, MaxPenalty: 40, Range: 7, Exponent: 1.3},
			},
			CrowdMultiplier: 0.25,
			Cold:            RampConfig{Threshold: 15, MaxPenalty: 35, Range: 15, Exponent: 1.3},
			Heat:            HeatConfig{Threshold: 28, MaxPenalty: 20, Range: 10, Exponent: 1.2},
			AirQuality:      RampConfig{Threshold: 2, MaxPenalty: 20, Range: 3, Exponent: 1.3},
			UV:              RampConfig{Threshold: 3, MaxPenalty: 30, Range: 7, Exponent: 1.3},
		},
	}
}

// LoadProfiles returns the default table with any profiles from the given
// YAML file replacing their built-in counterparts. A profile in the file
// replaces the whole built-in profile for that activity; partial profiles
// fail validation rather than silently inheriting defaults.
func LoadProfiles(path string) (map[Activity]Profile, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	overrides := make(map[Activity]Profile)
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	for act, p := range overrides {
		if _, err := ParseActivity(string(act)); err != nil {
			return nil, fmt.Errorf("profile file: %w", err)
		}
		profiles[act] = p
	}
	return profiles, nil
}

// ValidateProfiles checks the configuration table once at startup. Ramps in
// use must have nonzero ranges and positive exponents so the penalty math
// never needs defensive per-call checks.
func ValidateProfiles(profiles map[Activity]Profile) error {
	for _, act := range Activities() {
		p, ok := profiles[act]
		if !ok {
			return fmt.Errorf("missing profile for %s", act)
		}
		if err := validateProfile(p); err != nil {
			return fmt.Errorf("profile %s: %w", act, err)
		}
	}
	return nil
}

func validateProfile(p Profile) error {
	if p.Rain.Threshold < 0 || p.Rain.Threshold >= 1 {
		return fmt.Errorf("rain threshold %v outside [0,1)", p.Rain.Threshold)
	}
	if p.Rain.Exponent <= 0 {
		return fmt.Errorf("rain exponent must be positive")
	}
	if p.CrowdMultiplier < 0 {
		return fmt.Errorf("crowd multiplier must not be negative")
	}

	switch p.Wind.Model {
	case WindRamp:
		if err := validateRamp("wind", p.Wind.Ramp); err != nil {
			return err
		}
	case WindZones:
		z := p.Wind.Zones
		if !(z.TooLightThreshold <= z.WorkableMin &&
			z.WorkableMin <= z.OptimalMin &&
			z.OptimalMin <= z.OptimalMax &&
			z.OptimalMax <= z.WorkableMax &&
			z.WorkableMax <= z.DangerousMin &&
			z.DangerousMin <= z.DangerousMax &&
			z.DangerousMax <= z.VeryDangerousThreshold) {
			return fmt.Errorf("wind zones are not ordered")
		}
	default:
		return fmt.Errorf("unknown wind model %q", p.Wind.Model)
	}

	if err := validateRamp("cold", p.Cold); err != nil {
		return err
	}
	if !p.Heat.Flat {
		heat := RampConfig{Threshold: p.Heat.Threshold, MaxPenalty: p.Heat.MaxPenalty, Range: p.Heat.Range, Exponent: p.Heat.Exponent}
		if err := validateRamp("heat", heat); err != nil {
			return err
		}
	}
	if err := validateRamp("air_quality", p.AirQuality); err != nil {
		return err
	}
	if err := validateRamp("uv", p.UV); err != nil {
		return err
	}
	return nil
}

func validateRamp(name string, r RampConfig) error {
	if r.Range == 0 {
		return fmt.Errorf("%s range must be nonzero", name)
	}
	if r.Exponent <= 0 {
		return fmt.Errorf("%s exponent must be positive", name)
	}
	return nil
}
