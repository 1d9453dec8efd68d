package models

import (
	"math"
	"strings"
)

// ZoneUnknown is the bucket for teams and tickets whose zone cannot be
// resolved. Misattribution is possible when ticket zone strings do not match
// any team zone; the heuristics below mirror the upstream taxonomy as far
// as it is specified.
const ZoneUnknown = "Unknown"

// stateZones maps Malaysian states to their operational zone. The table is
// fixed; the backend has no endpoint exposing it.
var stateZones = map[string]string{
	"selangor":        "Central Zone",
	"kuala lumpur":    "Central Zone",
	"putrajaya":       "Central Zone",
	"penang":          "Northern Zone",
	"pulau pinang":    "Northern Zone",
	"kedah":           "Northern Zone",
	"perak":           "Northern Zone",
	"perlis":          "Northern Zone",
	"johor":           "Southern Zone",
	"melaka":          "Southern Zone",
	"malacca":         "Southern Zone",
	"negeri sembilan": "Southern Zone",
	"pahang":          "East Coast Zone",
	"terengganu":      "East Coast Zone",
	"kelantan":        "East Coast Zone",
	"sabah":           "East Malaysia Zone",
	"sarawak":         "East Malaysia Zone",
	"labuan":          "East Malaysia Zone",
}

type stateCenter struct {
	State string
	Lat   float64
	Lon   float64
}

// Rough geographic centers, used only to attribute coordinates-bearing
// tickets to the nearest state.
var stateCenters = []stateCenter{
	{"Selangor", 3.07, 101.52},
	{"Kuala Lumpur", 3.14, 101.69},
	{"Penang", 5.35, 100.30},
	{"Kedah", 6.12, 100.37},
	{"Perak", 4.59, 101.09},
	{"Perlis", 6.44, 100.20},
	{"Johor", 1.49, 103.74},
	{"Melaka", 2.19, 102.25},
	{"Negeri Sembilan", 2.73, 101.94},
	{"Pahang", 3.81, 103.33},
	{"Terengganu", 5.33, 103.14},
	{"Kelantan", 6.12, 102.25},
	{"Sabah", 5.97, 116.07},
	{"Sarawak", 1.55, 110.34},
	{"Labuan", 5.28, 115.24},
}

// ZoneForState resolves a state name to its zone, tolerating extra
// qualifiers like "Northern Zone (Penang)".
func ZoneForState(state string) string {
	v := strings.ToLower(strings.TrimSpace(state))
	if v == "" {
		return ZoneUnknown
	}
	if zone, ok := stateZones[v]; ok {
		return zone
	}
	for name, zone := range stateZones {
		if strings.Contains(v, name) {
			return zone
		}
	}
	return ZoneUnknown
}

// ResolveTicketZone attributes a ticket to a zone bucket. Order: the
// ticket's own zone string (exact, then substring against known team
// zones), then its state via the fixed table, then nearest state center
// when coordinates exist. Falls back to ZoneUnknown.
func ResolveTicketZone(t Ticket, teamZones []string) string {
	raw := strings.TrimSpace(t.Zone)
	if raw != "" {
		for _, z := range teamZones {
			if strings.EqualFold(raw, z) {
				return z
			}
		}
		lower := strings.ToLower(raw)
		for _, z := range teamZones {
			zl := strings.ToLower(z)
			if strings.Contains(lower, zl) || strings.Contains(zl, lower) {
				return z
			}
		}
		if zone := ZoneForState(raw); zone != ZoneUnknown {
			return zone
		}
	}
	if zone := ZoneForState(t.State); zone != ZoneUnknown {
		return zone
	}
	if t.Lat != nil && t.Lon != nil {
		if state := NearestState(*t.Lat, *t.Lon); state != "" {
			return ZoneForState(state)
		}
	}
	return ZoneUnknown
}

// NearestState returns the state whose center is closest to the given
// coordinates, or "" when the point is implausibly far from Malaysia
// (over 500km from every center).
func NearestState(lat, lon float64) string {
	best := ""
	bestDist := math.MaxFloat64
	for _, c := range stateCenters {
		d := haversineKm(lat, lon, c.Lat, c.Lon)
		if d < bestDist {
			bestDist = d
			best = c.State
		}
	}
	if bestDist > 500 {
		return ""
	}
	return best
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	lat1R := degreesToRadians(lat1)
	lat2R := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1R)*math.Cos(lat2R)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
