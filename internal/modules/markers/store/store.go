// Package store holds the ordered list of markers currently shown on the map.
//
// A Store is an immutable value: every mutation returns a new Store backed by
// a fresh slice, so a Store handed out earlier never changes underneath its
// holder. Positions in the list are the markers' identity within a session.
package store

import "stationmap/internal/modules/markers/types"

type Store struct {
	markers []types.Marker
	version uint64
}

// New returns a store holding a copy of markers at version 0.
func New(markers []types.Marker) Store {
	return Store{markers: clone(markers)}
}

func (s Store) Len() int { return len(s.markers) }

// Version counts the mutations applied since the store was created.
func (s Store) Version() uint64 { return s.version }

// At returns the marker at index i.
func (s Store) At(i int) (types.Marker, bool) {
	if i < 0 || i >= len(s.markers) {
		return types.Marker{}, false
	}
	return s.markers[i], true
}

// Markers returns a copy of the list.
func (s Store) Markers() []types.Marker {
	return clone(s.markers)
}

func (s Store) Append(m types.Marker) Store {
	out := make([]types.Marker, len(s.markers), len(s.markers)+1)
	copy(out, s.markers)
	return Store{markers: append(out, m), version: s.version + 1}
}

// ReplaceAt swaps the marker at index i. An out-of-range index leaves the
// store unchanged and reports false.
func (s Store) ReplaceAt(i int, m types.Marker) (Store, bool) {
	if i < 0 || i >= len(s.markers) {
		return s, false
	}
	out := clone(s.markers)
	out[i] = m
	return Store{markers: out, version: s.version + 1}, true
}

// RemoveAt drops the marker at index i, keeping the order of the rest.
func (s Store) RemoveAt(i int) (Store, bool) {
	if i < 0 || i >= len(s.markers) {
		return s, false
	}
	out := make([]types.Marker, 0, len(s.markers)-1)
	out = append(out, s.markers[:i]...)
	out = append(out, s.markers[i+1:]...)
	return Store{markers: out, version: s.version + 1}, true
}

// Reset replaces the whole list.
func (s Store) Reset(markers []types.Marker) Store {
	return Store{markers: clone(markers), version: s.version + 1}
}

// Prepend places markers in front of the current list.
func (s Store) Prepend(markers []types.Marker) Store {
	out := make([]types.Marker, 0, len(markers)+len(s.markers))
	out = append(out, markers...)
	out = append(out, s.markers...)
	return Store{markers: out, version: s.version + 1}
}

func clone(in []types.Marker) []types.Marker {
	out := make([]types.Marker, len(in))
	copy(out, in)
	return out
}
