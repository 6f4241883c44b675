// Package source provides the initial marker list of a session: either a
// fixed seed list or the remote station service.
package source

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"stationmap/internal/modules/markers/stationclient"
	"stationmap/internal/modules/markers/types"
)

type Source interface {
	Load(ctx context.Context) ([]types.Marker, error)
}

// Seed is a fixed marker list.
type Seed struct {
	markers []types.Marker
}

func (s *Seed) Load(context.Context) ([]types.Marker, error) {
	out := make([]types.Marker, len(s.markers))
	copy(out, s.markers)
	return out, nil
}

// DefaultSeed returns the three stations shipped with the locator.
func DefaultSeed() *Seed {
	station := func(name string, lat, lng float64) types.Marker {
		return types.Marker{
			Position: types.Position{lat, lng},
			Details: types.Details{
				Name:  name,
				Hours: types.FormatHours("9:00-18:00"),
				Phone: types.FormatPhone("123-456-789"),
			},
			IconKind: types.IconDefault,
		}
	}
	return &Seed{markers: []types.Marker{
		station("Stacja 1", 54.022, 21.77),
		station("Stacja 2", 54.03, 21.78),
		station("Stacja 3", 54.035, 21.76),
	}}
}

type seedFile struct {
	Stations []seedStation `yaml:"stations"`
}

type seedStation struct {
	Lat   *float64 `yaml:"lat"`
	Lng   *float64 `yaml:"lng"`
	Name  string   `yaml:"name"`
	Hours string   `yaml:"hours"`
	Phone string   `yaml:"phone"`
}

// LoadSeedFile reads a YAML seed list. Hours and phone are given without
// display prefixes; blank values take the placeholders.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (*Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	markers := make([]types.Marker, 0, len(f.Stations))
	for i, st := range f.Stations {
		if st.Lat == nil || st.Lng == nil {
			return nil, fmt.Errorf("stations[%d]: lat and lng are required", i)
		}
		lat, lng := *st.Lat, *st.Lng
		if math.IsNaN(lat) || lat < -90 || lat > 90 || math.IsNaN(lng) || lng < -180 || lng > 180 {
			return nil, fmt.Errorf("stations[%d]: coordinates out of range (%v, %v)", i, lat, lng)
		}
		markers = append(markers, types.Marker{
			Position: types.Position{lat, lng},
			Details: types.Details{
				Name:  withDefault(st.Name, types.PlaceholderName),
				Hours: types.FormatHours(withDefault(st.Hours, types.PlaceholderHours)),
				Phone: types.FormatPhone(withDefault(st.Phone, types.PlaceholderPhone)),
			},
			IconKind: types.IconDefault,
		})
	}
	return &Seed{markers: markers}, nil
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type fetcher interface {
	FetchAll(ctx context.Context) ([]stationclient.Record, error)
}

// Remote loads markers from the station service.
type Remote struct {
	client fetcher
}

func NewRemote(client fetcher) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Load(ctx context.Context) ([]types.Marker, error) {
	recs, err := r.client.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Marker, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Marker())
	}
	return out, nil
}
