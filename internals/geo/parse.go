package geo

import (
	"regexp"
	"strconv"
)

// Stored trip locations exist in two historical formats: "[lat, lng]" and
// "(lat, lng)". Neither has been migrated to a canonical form, so both are
// accepted; square brackets are tried first.
var (
	bracketPattern = regexp.MustCompile(`\[\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*\]`)
	parenPattern   = regexp.MustCompile(`\(\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*\)`)
)

// ParseCoordinates extracts a GeoPoint from free-form location text. It is a
// best-effort legacy reader: nil means "no recognized coordinates", never an
// error. Callers treat nil as "cannot evaluate deviation for this trip".
func ParseCoordinates(s string) *GeoPoint {
	if s == "" {
		return nil
	}

	m := bracketPattern.FindStringSubmatch(s)
	if m == nil {
		m = parenPattern.FindStringSubmatch(s)
	}
	if m == nil {
		return nil
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil
	}

	return &GeoPoint{Lat: lat, Lng: lng}
}
