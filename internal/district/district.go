package district

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// District is one administrative district from the static reference table.
// Identifiers and coordinates are kept as the raw strings from the source
// file; parsed coordinates are exposed via Lat/Lon.
type District struct {
	ID         string `json:"id"`
	DivisionID string `json:"division_id"`
	Name       string `json:"name"`
	BnName     string `json:"bn_name"`
	Latitude   string `json:"lat"`
	Longitude  string `json:"long"`

	lat float64
	lon float64
}

// Lat returns the parsed latitude in decimal degrees.
func (d District) Lat() float64 { return d.lat }

// Lon returns the parsed longitude in decimal degrees.
func (d District) Lon() float64 { return d.lon }

// Registry holds the immutable district list loaded once at startup.
type Registry struct {
	districts []District
	byName    map[string]District
}

// Load reads the district reference table from a JSON file of the form
// {"districts": [...]}. Coordinates must parse as floats.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read districts file: %w", err)
	}

	var payload struct {
		Districts []District `json:"districts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse districts file: %w", err)
	}
	if len(payload.Districts) == 0 {
		return nil, fmt.Errorf("districts file %s contains no districts", path)
	}

	byName := make(map[string]District, len(payload.Districts))
	for i := range payload.Districts {
		d := &payload.Districts[i]

		d.lat, err = strconv.ParseFloat(d.Latitude, 64)
		if err != nil {
			return nil, fmt.Errorf("district %s: invalid latitude %q", d.Name, d.Latitude)
		}
		d.lon, err = strconv.ParseFloat(d.Longitude, 64)
		if err != nil {
			return nil, fmt.Errorf("district %s: invalid longitude %q", d.Name, d.Longitude)
		}

		byName[d.Name] = *d
	}

	return &Registry{
		districts: payload.Districts,
		byName:    byName,
	}, nil
}

// All returns every district in file order. Callers must not modify the slice.
func (r *Registry) All() []District {
	return r.districts
}

// ByName looks a district up by its English name.
func (r *Registry) ByName(name string) (District, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Len returns the number of districts in the registry.
func (r *Registry) Len() int {
	return len(r.districts)
}
