package controller

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"stationmap/internal/modules/markers/editor"
	"stationmap/internal/modules/markers/session"
	"stationmap/internal/modules/markers/types"
)

type markerJSON struct {
	Index    int            `json:"index"`
	Position types.Position `json:"position"`
	Details  types.Details  `json:"details"`
	IconKind types.IconKind `json:"iconKind"`
	RemoteID string         `json:"remoteId,omitempty"`
}

type formJSON struct {
	Active bool          `json:"active"`
	Fields editor.Fields `json:"fields"`
}

type stateJSON struct {
	Mode     types.Mode   `json:"mode"`
	Selected *int         `json:"selected"`
	Version  uint64       `json:"version"`
	Loading  bool         `json:"loading"`
	Markers  []markerJSON `json:"markers"`
	Form     formJSON     `json:"form"`
}

func newStateJSON(v session.View) stateJSON {
	out := stateJSON{
		Mode:    v.Mode,
		Version: v.Version,
		Loading: v.Loading,
		Markers: make([]markerJSON, len(v.Markers)),
		Form:    formJSON{Active: v.FormActive, Fields: v.Fields},
	}
	if v.HasSel {
		sel := v.Selected
		out.Selected = &sel
	}
	for i, m := range v.Markers {
		out.Markers[i] = markerJSON{
			Index:    i,
			Position: m.Position,
			Details:  m.Details,
			IconKind: m.IconKind,
			RemoteID: m.RemoteID,
		}
	}
	return out
}

type clickRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (req clickRequest) position() (types.Position, error) {
	if req.Lat == nil || req.Lng == nil {
		return types.Position{}, errors.New("lat and lng are required")
	}
	lat, lng := *req.Lat, *req.Lng
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return types.Position{}, fmt.Errorf("lat %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return types.Position{}, fmt.Errorf("lng %v out of range [-180, 180]", lng)
	}
	return types.Position{lat, lng}, nil
}

func parseIndex(r *http.Request) (int, error) {
	s := r.PathValue("index")
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid marker index %q", s)
	}
	return i, nil
}
