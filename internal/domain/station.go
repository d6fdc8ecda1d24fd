package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// StationDescriptor identifies one monitored buoy. Descriptors are loaded at
// process start and never change.
type StationDescriptor struct {
	ID   string  `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
	// WindFallbackID names a nearby coastal station whose feed fills in wind
	// fields when the wave buoy does not carry an anemometer. Empty when no
	// fallback is configured.
	WindFallbackID string `json:"wind_fallback_id,omitempty"`
}

// Registry is the static, read-only table of monitored stations.
type Registry struct {
	stations []StationDescriptor
	byID     map[string]StationDescriptor
}

// NewRegistry builds a registry preserving the given station order.
func NewRegistry(stations []StationDescriptor) *Registry {
	byID := make(map[string]StationDescriptor, len(stations))
	for _, s := range stations {
		byID[s.ID] = s
	}
	return &Registry{stations: stations, byID: byID}
}

// Stations returns the registry in load order.
func (r *Registry) Stations() []StationDescriptor {
	return r.stations
}

// Lookup returns the descriptor for a station id.
func (r *Registry) Lookup(id string) (StationDescriptor, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Len returns the number of registered stations.
func (r *Registry) Len() int {
	return len(r.stations)
}

// DefaultStations is the compiled-in Southern/Central California buoy table.
// Wave buoys without anemometers point at nearby C-MAN coastal stations for
// wind fallback.
func DefaultStations() []StationDescriptor {
	return []StationDescriptor{
		{ID: "46266", Lat: 32.933, Lon: -117.317, Name: "Del Mar Nearshore", WindFallbackID: "LJAC1"},
		{ID: "46225", Lat: 32.866, Lon: -117.283, Name: "Torrey Pines Outer", WindFallbackID: "LJAC1"},
		{ID: "46259", Lat: 32.749, Lon: -117.258, Name: "Mission Bay", WindFallbackID: "SDBC1"},
		{ID: "46232", Lat: 32.65, Lon: -117.3, Name: "Point Loma South", WindFallbackID: "SDBC1"},
		{ID: "46236", Lat: 32.55, Lon: -117.15, Name: "Imperial Beach", WindFallbackID: "SDBC1"},
		{ID: "46258", Lat: 33.475, Lon: -118.533, Name: "San Pedro Channel"},
		{ID: "46222", Lat: 33.75, Lon: -118.833, Name: "Santa Monica Basin"},
		{ID: "46086", Lat: 34.25, Lon: -120.45, Name: "Pt. Dume / Santa Barbara"},
		{ID: "46011", Lat: 34.935, Lon: -121.93, Name: "Santa Maria"},
		{ID: "46027", Lat: 40.75, Lon: -124.5, Name: "Cape Mendocino"},
		{ID: "46014", Lat: 39.22, Lon: -123.97, Name: "Pt. Arena"},
		{ID: "46026", Lat: 37.75, Lon: -122.83, Name: "San Francisco Bar"},
		{ID: "46012", Lat: 36.75, Lon: -122.43, Name: "Monterey Bay"},
		{ID: "46013", Lat: 38.24, Lon: -123.31, Name: "Bodega Bay"},
	}
}

// DefaultModelSources maps NDBC station ids to the CDIP archive station that
// provides a model forecast baseline for them. Stations absent from the map
// fall straight to the trend projection.
func DefaultModelSources() map[string]string {
	return map[string]string{
		"46266": "153",
		"46225": "100",
		"46232": "220",
		"46236": "155",
	}
}

// LoadStationsFile reads a station table from a JSON file. A missing file is
// reported via os.ErrNotExist so callers can fall back to the compiled-in
// defaults without treating it as fatal.
func LoadStationsFile(path string) ([]StationDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load stations %s: %w", path, err)
	}
	var stations []StationDescriptor
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("parse stations %s: %w", path, err)
	}
	return stations, nil
}

// LoadMappingFile reads a station-id to model-id lookup table from a JSON object
// file. Missing files propagate os.ErrNotExist; callers substitute an empty
// or default table.
func LoadMappingFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load mapping %s: %w", path, err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	return m, nil
}
