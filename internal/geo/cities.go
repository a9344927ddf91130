// Package geo maps city names to coordinates and IANA timezones.
//
// The tables are static placeholders for a real geocoder: a production
// deployment can substitute one behind the same two functions without
// touching the aggregation or caching layers. Lookups are case-insensitive
// and accept the URL-spelled variants ("new+york") that reach the services
// through path segments.
package geo

import "strings"

// Coords is a latitude/longitude pair.
type Coords struct {
	Lat float64
	Lon float64
}

var cityCoords = map[string]Coords{
	"london":          {51.5074, -0.1278},
	"tokyo":           {35.6762, 139.6503},
	"new york":        {40.7128, -74.0060},
	"new+york":        {40.7128, -74.0060},
	"paris":           {48.8566, 2.3522},
	"berlin":          {52.5200, 13.4050},
	"moscow":          {55.7558, 37.6173},
	"beijing":         {39.9042, 116.4074},
	"sydney":          {-33.8688, 151.2093},
	"rio de janeiro":  {-22.9068, -43.1729},
	"rio+de+janeiro":  {-22.9068, -43.1729},
	"cairo":           {30.0444, 31.2357},
}

var cityTimezones = map[string]string{
	"london":         "Europe/London",
	"tokyo":          "Asia/Tokyo",
	"new york":       "America/New_York",
	"new+york":       "America/New_York",
	"paris":          "Europe/Paris",
	"berlin":         "Europe/Berlin",
	"moscow":         "Europe/Moscow",
	"beijing":        "Asia/Shanghai",
	"sydney":         "Australia/Sydney",
	"rio de janeiro": "America/Sao_Paulo",
	"rio+de+janeiro": "America/Sao_Paulo",
	"cairo":          "Africa/Cairo",
	"los angeles":    "America/Los_Angeles",
	"los+angeles":    "America/Los_Angeles",
	"chicago":        "America/Chicago",
	"toronto":        "America/Toronto",
	"mexico city":    "America/Mexico_City",
	"mexico+city":    "America/Mexico_City",
	"sao paulo":      "America/Sao_Paulo",
	"sao+paulo":      "America/Sao_Paulo",
	"buenos aires":   "America/Argentina/Buenos_Aires",
	"buenos+aires":   "America/Argentina/Buenos_Aires",
	"dubai":          "Asia/Dubai",
	"mumbai":         "Asia/Kolkata",
	"singapore":      "Asia/Singapore",
	"hong kong":      "Asia/Hong_Kong",
	"hong+kong":      "Asia/Hong_Kong",
}

// Coordinates returns the coordinates for a known city, or (0, 0) for an
// unknown one.
func Coordinates(city string) Coords {
	if c, ok := cityCoords[normalize(city)]; ok {
		return c
	}
	return Coords{}
}

// Timezone returns the IANA timezone for a known city, or UTC for an
// unknown one.
func Timezone(city string) string {
	if tz, ok := cityTimezones[normalize(city)]; ok {
		return tz
	}
	return "UTC"
}

func normalize(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
