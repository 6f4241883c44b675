package stationclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"stationmap/internal/modules/markers/types"
)

// Record is a station as served by the station service.
type Record struct {
	ID          string  `json:"id,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Name        string  `json:"name"`
	OpeningHour string  `json:"openingHour"`
	ClosingHour string  `json:"closingHour"`
	Phone       string  `json:"phone"`
}

// Payload is the body of create and update calls. Nil fields are omitted, so
// the same type serves as a partial update.
type Payload struct {
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Name        *string  `json:"name,omitempty"`
	OpeningHour *string  `json:"openingHour,omitempty"`
	ClosingHour *string  `json:"closingHour,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
}

type wireRecord struct {
	ID          json.RawMessage `json:"id"`
	Lat         *float64        `json:"lat"`
	Lng         *float64        `json:"lng"`
	Name        *string         `json:"name"`
	OpeningHour *string         `json:"openingHour"`
	ClosingHour *string         `json:"closingHour"`
	Phone       *string         `json:"phone"`
}

// decodeRecord validates one station object. Text fields absent from the
// object are filled with placeholders, while empty strings are kept as sent.
// The placeholder hours apply only when both hour fields are absent. Missing
// or out-of-range coordinates are an error.
func decodeRecord(raw json.RawMessage) (Record, error) {
	if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
		return Record{}, errors.New("record is not an object")
	}
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if w.Lat == nil || w.Lng == nil {
		return Record{}, errors.New("record lacks lat/lng")
	}
	if err := validCoordinates(*w.Lat, *w.Lng); err != nil {
		return Record{}, err
	}
	id, err := decodeID(w.ID)
	if err != nil {
		return Record{}, err
	}

	opening, closing := types.SplitHours(types.PlaceholderHours)
	if w.OpeningHour != nil || w.ClosingHour != nil {
		opening, closing = orDefault(w.OpeningHour, ""), orDefault(w.ClosingHour, "")
	}
	return Record{
		ID:          id,
		Lat:         *w.Lat,
		Lng:         *w.Lng,
		Name:        orDefault(w.Name, types.PlaceholderName),
		OpeningHour: opening,
		ClosingHour: closing,
		Phone:       orDefault(w.Phone, types.PlaceholderPhone),
	}, nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("record id %s is neither string nor number", raw)
}

func validCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("lat out of range: %v", lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return fmt.Errorf("lng out of range: %v", lng)
	}
	return nil
}

func orDefault(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// Marker converts the record into a map marker with the default icon.
func (r Record) Marker() types.Marker {
	hours := r.OpeningHour
	if r.ClosingHour != "" {
		hours += "-" + r.ClosingHour
	}
	return types.Marker{
		Position: types.Position{r.Lat, r.Lng},
		Details: types.Details{
			Name:  r.Name,
			Hours: types.FormatHours(hours),
			Phone: types.FormatPhone(r.Phone),
		},
		IconKind: types.IconDefault,
		RemoteID: r.ID,
	}
}

// PayloadFromMarker builds a full create payload from a marker.
func PayloadFromMarker(m types.Marker) Payload {
	lat, lng := m.Position.Lat(), m.Position.Lng()
	p := DetailsPatch(m.Details)
	p.Lat = &lat
	p.Lng = &lng
	return p
}

// DetailsPatch builds a partial update carrying only the text fields.
func DetailsPatch(d types.Details) Payload {
	opening, closing := types.SplitHours(types.RawHours(d.Hours))
	name := d.Name
	phone := types.RawPhone(d.Phone)
	return Payload{
		Name:        &name,
		OpeningHour: &opening,
		ClosingHour: &closing,
		Phone:       &phone,
	}
}
