package weather

// WMO weather interpretation codes as reported by Open-Meteo, mapped to the
// condition labels the scoring engine matches against. Codes 95 and up are
// thunderstorms.
var wmoConditions = map[int]Condition{
	0:  {Main: "Clear", Description: "clear sky"},
	1:  {Main: "Clear", Description: "mainly clear"},
	2:  {Main: "Clouds", Description: "partly cloudy"},
	3:  {Main: "Clouds", Description: "overcast"},
	45: {Main: "Fog", Description: "fog"},
	48: {Main: "Fog", Description: "depositing rime fog"},
	51: {Main: "Drizzle", Description: "light drizzle"},
	53: {Main: "Drizzle", Description: "moderate drizzle"},
	55: {Main: "Drizzle", Description: "dense drizzle"},
	61: {Main: "Rain", Description: "slight rain"},
	63: {Main: "Rain", Description: "moderate rain"},
	65: {Main: "Rain", Description: "heavy rain"},
	71: {Main: "Snow", Description: "slight snow"},
	73: {Main: "Snow", Description: "moderate snow"},
	75: {Main: "Snow", Description: "heavy snow"},
	80: {Main: "Rain", Description: "slight rain showers"},
	81: {Main: "Rain", Description: "moderate rain showers"},
	82: {Main: "Rain", Description: "violent rain showers"},
	95: {Main: "Thunderstorm", Description: "thunderstorm"},
	96: {Main: "Thunderstorm", Description: "thunderstorm with slight hail"},
	99: {Main: "Thunderstorm", Description: "thunderstorm with heavy hail"},
}

const thunderstormCodeMin = 95

// mapWeatherCode translates a WMO code into a condition label pair.
func mapWeatherCode(code int) Condition {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return Condition{Main: "Unknown", Description: "unknown"}
}
