package weather

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/zsefvlol/timezonemapper"

	"agriyield/entities"
	"agriyield/pkg/logger"
)

var (
	latLngRe = regexp.MustCompile(`(?i)lat:\s*(-?\d+(?:\.\d+)?)\s*,\s*lng:\s*(-?\d+(?:\.\d+)?)`)
	pairRe   = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)
)

// FormatCoords renders the label used in the location field when a point is picked on the map.
func FormatCoords(lat, lon float64) string {
	return fmt.Sprintf("Lat: %.4f, Lng: %.4f", lat, lon)
}

// ParseCoords finds a "Lat: x, Lng: y" label anywhere in s.
func ParseCoords(s string) (lat, lon float64, ok bool) {
	m := latLngRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	return parsePair(m[1], m[2])
}

// ParseLocation reads "Lat: x, Lng: y", a bare "x,y" pair, or falls back to a place name.
func ParseLocation(s string) entities.Location {
	s = strings.TrimSpace(s)
	if lat, lon, ok := ParseCoords(s); ok {
		return entities.Location{Lat: &lat, Lon: &lon}
	}
	if m := pairRe.FindStringSubmatch(s); m != nil {
		if lat, lon, ok := parsePair(m[1], m[2]); ok {
			return entities.Location{Lat: &lat, Lon: &lon}
		}
	}
	return entities.Location{Query: s}
}

func parsePair(a, b string) (float64, float64, bool) {
	lat, err1 := strconv.ParseFloat(a, 64)
	lon, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// LocationKey identifies a location for caching.
func LocationKey(l entities.Location) string {
	if l.HasCoords() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return strings.ToLower(strings.TrimSpace(l.Query))
}

// ZoneFor resolves the IANA zone of a coordinate location; UTC otherwise.
func ZoneFor(l entities.Location) *time.Location {
	if !l.HasCoords() {
		return time.UTC
	}
	name := timezonemapper.LatLngToTimezoneString(*l.Lat, *l.Lon)
	if name == "" {
		return time.UTC
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		logger.WarnF("[weather] unknown zone %q for %s: %v", name, LocationKey(l), err)
		return time.UTC
	}
	return zone
}
