package weather

import "time"

// Condition is the discriminated weather label plus its free-text
// description, e.g. {Main: "Rain", Description: "slight rain showers"}.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Observation is one hour of weather data in the scoring engine's input
// contract. UVIndex and AirQuality are optional; when nil the corresponding
// penalties are skipped. Units: °C, m/s, precipitation probability as a
// 0-1 fraction.
type Observation struct {
	Timestamp       int64     `json:"dt"`
	Temp            float64   `json:"temp"`
	FeelsLike       float64   `json:"feels_like"`
	Pressure        int       `json:"pressure"`
	Humidity        int       `json:"humidity"`
	DewPoint        float64   `json:"dew_point"`
	UVIndex         *float64  `json:"uvi,omitempty"`
	Clouds          int       `json:"clouds"`
	Visibility      int       `json:"visibility"`
	WindSpeed       float64   `json:"wind_speed"`
	WindDeg         int       `json:"wind_deg"`
	WindGust        float64   `json:"wind_gust"`
	Condition       Condition `json:"weather"`
	PrecipProb      float64   `json:"pop"`
	Precipitation   float64   `json:"precipitation"`
	AirQuality      *int      `json:"air_quality,omitempty"`
	HasThunderstorm bool      `json:"has_thunderstorm"`
}

// Time returns the observation's civil time in the given location.
func (o Observation) Time(loc *time.Location) time.Time {
	return time.Unix(o.Timestamp, 0).In(loc)
}

// Data aggregates the hourly window returned by the weather supply service.
type Data struct {
	Latitude  float64       `json:"lat"`
	Longitude float64       `json:"lon"`
	Timezone  string        `json:"timezone"`
	Hourly    []Observation `json:"hourly"`
	CachedAt  time.Time     `json:"cached_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}
