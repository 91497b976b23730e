package weather

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/feldcast/feldcast/internal/db"
)

// cacheTTL is the staleness window for raw weather data. Scores are derived
// on every request, so one hour of weather staleness is the only staleness
// in the system.
const cacheTTL = 1 * time.Hour

// Fallback values for fields the Open-Meteo free tier does not provide.
const (
	fallbackPressure   = 1013
	fallbackHumidity   = 50
	fallbackVisibility = 10000
	fallbackAQI        = 2
)

// Store is the persistent cache tier used behind the in-memory one.
type Store interface {
	GetCachedWeather(lat, lon float64) (*db.CachedWeather, error)
	SetCachedWeather(lat, lon float64, data string, ttl time.Duration) error
}

// Service handles weather data supply: fetch, normalization and caching.
// The in-memory tier is consulted first, then the persistent store, then
// the upstream API. Both tiers are written last-writer-wins.
type Service struct {
	client *Client
	mem    *gocache.Cache
	store  Store
	loc    *time.Location
}

// NewService creates a new weather service. store may be nil, in which case
// only the in-memory tier is used.
func NewService(store Store, loc *time.Location) *Service {
	return &Service{
		client: NewClient(),
		mem:    gocache.New(cacheTTL, 10*time.Minute),
		store:  store,
		loc:    loc,
	}
}

// GetWeather returns the hourly window for a location, utilizing caching.
func (s *Service) GetWeather(lat, lon float64) (*Data, error) {
	// Round coordinates to 2 decimal places (approx 1.1km precision)
	// to bound the number of distinct cache entries and API hits.
	const precision = 100.0
	rLat := math.Round(lat*precision) / precision
	rLon := math.Round(lon*precision) / precision

	key := fmt.Sprintf("%.2f,%.2f", rLat, rLon)
	if v, ok := s.mem.Get(key); ok {
		if wd, ok := v.(*Data); ok {
			return wd, nil
		}
	}

	if s.store != nil {
		cached, err := s.store.GetCachedWeather(rLat, rLon)
		if err != nil {
			log.Printf("Cache error: %v", err)
			// Proceed to fetch fresh data on cache error
		}
		if cached != nil {
			var wd Data
			if err := json.Unmarshal([]byte(cached.Data), &wd); err == nil {
				wd.CachedAt = cached.CreatedAt
				wd.ExpiresAt = cached.ExpiresAt
				s.mem.Set(key, &wd, time.Until(cached.ExpiresAt))
				return &wd, nil
			} else {
				log.Printf("Cache unmarshal error: %v", err)
			}
		}
	}

	wd, err := s.fetchFreshWeather(rLat, rLon)
	if err != nil {
		return nil, err
	}

	s.mem.Set(key, wd, cacheTTL)
	if s.store != nil {
		if data, err := json.Marshal(wd); err == nil {
			if err := s.store.SetCachedWeather(rLat, rLon, string(data), cacheTTL); err != nil {
				log.Printf("Failed to update cache: %v", err)
			}
		}
	}

	return wd, nil
}

func (s *Service) fetchFreshWeather(lat, lon float64) (*Data, error) {
	fc, err := s.client.GetForecast(lat, lon, s.loc.String(), 7)
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}

	// Backfill today's elapsed hours (best effort).
	var past *ForecastResponse
	if p, err := s.client.GetPastDay(lat, lon, s.loc.String()); err != nil {
		log.Printf("Failed to get past-day hours: %v", err)
	} else {
		past = p
	}

	now := time.Now()
	hourly := make([]Observation, 0, len(fc.Hourly.Time)+24)

	if past != nil {
		today := now.In(s.loc)
		for _, o := range s.transform(past) {
			t := o.Time(s.loc)
			// Only elapsed hours of today; the forecast covers the rest.
			if sameDay(t, today) && o.Timestamp < now.Unix() {
				hourly = append(hourly, o)
			}
		}
	}
	hourly = append(hourly, s.transform(fc)...)

	hourly = dedupeByTimestamp(hourly)
	sort.Slice(hourly, func(i, j int) bool { return hourly[i].Timestamp < hourly[j].Timestamp })

	return &Data{
		Latitude:  lat,
		Longitude: lon,
		Timezone:  s.loc.String(),
		Hourly:    hourly,
		CachedAt:  now,
		ExpiresAt: now.Add(cacheTTL),
	}, nil
}

// transform converts an Open-Meteo response into the engine's observation
// contract, applying documented fallbacks for fields the upstream source
// lacks: standard pressure and typical humidity, dew point approximated
// from temperature, default visibility, and a fixed placeholder air quality
// category.
func (s *Service) transform(fc *ForecastResponse) []Observation {
	h := &fc.Hourly
	out := make([]Observation, 0, len(h.Time))

	for i, ts := range h.Time {
		t, err := time.ParseInLocation("2006-01-02T15:04", ts, s.loc)
		if err != nil {
			log.Printf("Skipping hour with unparseable time %q: %v", ts, err)
			continue
		}

		obs := Observation{
			Timestamp:  t.Unix(),
			Pressure:   fallbackPressure,
			Humidity:   fallbackHumidity,
			Visibility: fallbackVisibility,
		}

		if i < len(h.Temperature) {
			obs.Temp = h.Temperature[i]
			obs.DewPoint = h.Temperature[i] - 5 // approximation
		}
		if i < len(h.ApparentTemperature) {
			obs.FeelsLike = h.ApparentTemperature[i]
		} else {
			obs.FeelsLike = obs.Temp
		}
		if i < len(h.PrecipitationProbability) {
			obs.PrecipProb = h.PrecipitationProbability[i] / 100
		}
		if i < len(h.Precipitation) {
			obs.Precipitation = h.Precipitation[i]
		}
		if i < len(h.WeatherCode) {
			code := h.WeatherCode[i]
			obs.Condition = mapWeatherCode(code)
			obs.HasThunderstorm = code >= thunderstormCodeMin
		}
		if i < len(h.CloudCover) {
			obs.Clouds = h.CloudCover[i]
		}
		if i < len(h.Visibility) && h.Visibility[i] > 0 {
			obs.Visibility = int(h.Visibility[i])
		}
		if i < len(h.WindSpeed) {
			obs.WindSpeed = h.WindSpeed[i]
			obs.WindGust = h.WindSpeed[i]
		}
		if i < len(h.WindDirection) {
			obs.WindDeg = h.WindDirection[i]
		}
		if i < len(h.WindGusts) && h.WindGusts[i] > 0 {
			obs.WindGust = h.WindGusts[i]
		}
		if i < len(h.UVIndex) {
			uvi := h.UVIndex[i]
			obs.UVIndex = &uvi
		}

		// Air quality is not available from this source.
		aqi := fallbackAQI
		obs.AirQuality = &aqi

		out = append(out, obs)
	}

	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dedupeByTimestamp(hours []Observation) []Observation {
	seen := make(map[int64]bool, len(hours))
	out := hours[:0]
	for _, h := range hours {
		if seen[h.Timestamp] {
			continue
		}
		seen[h.Timestamp] = true
		out = append(out, h)
	}
	return out
}
