package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.open-meteo.com"

// hourlyFields are the Open-Meteo hourly variables we request. The free tier
// does not expose pressure, humidity or air quality; the service fills those
// with documented fallback values.
var hourlyFields = []string{
	"temperature_2m",
	"apparent_temperature",
	"precipitation_probability",
	"precipitation",
	"weather_code",
	"cloud_cover",
	"visibility",
	"wind_speed_10m",
	"wind_direction_10m",
	"wind_gusts_10m",
	"uv_index",
	"is_day",
}

// Client handles Open-Meteo API interactions
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new Open-Meteo API client
func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) get(url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Open-Meteo API error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// ForecastResponse represents the Open-Meteo /v1/forecast response. Hour
// timestamps are local civil times (no offset) in the requested timezone.
type ForecastResponse struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Hourly           struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		Precipitation            []float64 `json:"precipitation"`
		WeatherCode              []int     `json:"weather_code"`
		CloudCover               []int     `json:"cloud_cover"`
		Visibility               []float64 `json:"visibility"`
		WindSpeed                []float64 `json:"wind_speed_10m"`
		WindDirection            []int     `json:"wind_direction_10m"`
		WindGusts                []float64 `json:"wind_gusts_10m"`
		UVIndex                  []float64 `json:"uv_index"`
	} `json:"hourly"`
}

func (c *Client) forecastURL(lat, lon float64, timezone string, forecastDays, pastDays int) string {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("hourly", strings.Join(hourlyFields, ","))
	params.Set("timezone", timezone)
	// Request m/s so no wind unit conversion is needed downstream.
	params.Set("wind_speed_unit", "ms")
	params.Set("forecast_days", strconv.Itoa(forecastDays))
	if pastDays > 0 {
		params.Set("past_days", strconv.Itoa(pastDays))
	}
	return c.BaseURL + "/v1/forecast?" + params.Encode()
}

// GetForecast fetches the hourly forecast for the coming days.
func (c *Client) GetForecast(lat, lon float64, timezone string, days int) (*ForecastResponse, error) {
	return c.getForecast(c.forecastURL(lat, lon, timezone, days, 0))
}

// GetPastDay fetches yesterday and today, used to backfill the hours of the
// current day that have already passed.
func (c *Client) GetPastDay(lat, lon float64, timezone string) (*ForecastResponse, error) {
	return c.getForecast(c.forecastURL(lat, lon, timezone, 1, 1))
}

func (c *Client) getForecast(url string) (*ForecastResponse, error) {
	data, err := c.get(url)
	if err != nil {
		return nil, err
	}

	var fc ForecastResponse
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}
