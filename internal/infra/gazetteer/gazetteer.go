package gazetteer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one named place with its coordinates.
type Entry struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Static resolves place names against a fixed table. It implements
// chat.Geocoder; this is the whole extent of geocoding in the service,
// anything smarter belongs to an external collaborator.
type Static struct {
	places map[string]Entry
}

// builtins cover the demo city so the service answers place-name queries out
// of the box.
var builtins = map[string]Entry{
	"chicago":          {Latitude: 41.8781, Longitude: -87.6298},
	"downtown chicago": {Latitude: 41.8781, Longitude: -87.6298},
	"chicago loop":     {Latitude: 41.8786, Longitude: -87.6251},
	"lincoln park":     {Latitude: 41.9214, Longitude: -87.6513},
	"hyde park":        {Latitude: 41.7943, Longitude: -87.5907},
	"wicker park":      {Latitude: 41.9088, Longitude: -87.6796},
}

// NewStatic builds the resolver from the builtin table plus an optional YAML
// file of additional places.
func NewStatic(path string) (*Static, error) {
	places := make(map[string]Entry, len(builtins))
	for name, entry := range builtins {
		places[name] = entry
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read gazetteer file: %w", err)
		}
		var extra map[string]Entry
		if err := yaml.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("parse gazetteer file: %w", err)
		}
		for name, entry := range extra {
			places[normalize(name)] = entry
		}
	}

	return &Static{places: places}, nil
}

// Resolve implements chat.Geocoder. Unknown places return ok=false, never an
// error.
func (s *Static) Resolve(_ context.Context, place string) (lat, lon float64, ok bool, err error) {
	entry, found := s.places[normalize(place)]
	if !found {
		return 0, 0, false, nil
	}
	return entry.Latitude, entry.Longitude, true, nil
}

func normalize(place string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(place)))
	if len(fields) > 0 && fields[0] == "the" {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}
