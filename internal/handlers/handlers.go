package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/feldcast/feldcast/internal/forecast"
	"github.com/feldcast/feldcast/internal/scoring"
	"github.com/feldcast/feldcast/internal/venue"
	"github.com/feldcast/feldcast/internal/weather"
)

// WeatherService supplies the cached hourly window for the venue.
type WeatherService interface {
	GetWeather(lat, lon float64) (*weather.Data, error)
}

// Pinger is the liveness surface of the cache store.
type Pinger interface {
	Ping() error
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	weather  WeatherService
	engine   *scoring.Engine
	store    Pinger
	lat, lon float64
}

// New creates a new Handlers instance for a venue at the given coordinates.
// store may be nil when running without the persistent cache.
func New(ws WeatherService, engine *scoring.Engine, store Pinger, lat, lon float64) *Handlers {
	return &Handlers{
		weather: ws,
		engine:  engine,
		store:   store,
		lat:     lat,
		lon:     lon,
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("JSON encode error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Printf("Response write error: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleHealth handles health check endpoint
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			status = "degraded"
		}
	} else {
		status = "no_cache_store"
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// HandleForecast serves the scored multi-day window for one activity.
// GET /api/forecast?activity=cycling&limit=3
func (h *Handlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	act, err := scoring.ParseActivity(r.URL.Query().Get("activity"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	limit := forecast.DefaultBestTimes
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 24 {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer between 1 and 24"})
			return
		}
		limit = n
	}

	wd, err := h.weather.GetWeather(h.lat, h.lon)
	if err != nil {
		log.Printf("Weather error: %v", err)
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "failed to retrieve weather data"})
		return
	}

	fc := forecast.Build(h.engine, act, wd.Hourly, time.Now(), limit)
	h.writeJSON(w, http.StatusOK, fc)
}

type venueResponse struct {
	Timestamp   int64  `json:"ts"`
	Open        bool   `json:"open"`
	OpenHour    int    `json:"open_hour"`
	CloseHour   int    `json:"close_hour"`
	CrowdFactor *int   `json:"crowd_factor,omitempty"`
	Period      string `json:"period_note,omitempty"`
}

// HandleVenue reports openness and the crowd estimate for one hour,
// independent of any activity score. GET /api/venue?ts=1718452800
// (ts defaults to now).
func (h *Handlers) HandleVenue(w http.ResponseWriter, r *http.Request) {
	cal := h.engine.Calendar()

	ts := time.Now().Unix()
	if s := r.URL.Query().Get("ts"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ts must be a unix timestamp"})
			return
		}
		ts = n
	}

	t := time.Unix(ts, 0).In(cal.Location)
	open, close := cal.OpeningHours(t)

	resp := venueResponse{
		Timestamp: ts,
		Open:      cal.IsOpen(t.Hour(), t),
		OpenHour:  open,
		CloseHour: close,
	}

	// Crowd needs weather; report it when the window covers the hour.
	if wd, err := h.weather.GetWeather(h.lat, h.lon); err != nil {
		log.Printf("Weather error: %v", err)
	} else if obs, ok := findHour(wd.Hourly, ts); ok {
		cf := venue.CrowdFactor(t.Hour(), t.Weekday(), obs.Temp, obs.Condition.Main)
		resp.CrowdFactor = &cf
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// findHour locates the observation covering a timestamp, if the hourly
// window contains it.
func findHour(hours []weather.Observation, ts int64) (weather.Observation, bool) {
	for _, obs := range hours {
		if obs.Timestamp <= ts && ts < obs.Timestamp+3600 {
			return obs, true
		}
	}
	return weather.Observation{}, false
}
