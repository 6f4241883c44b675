package types

import (
	"errors"
	"fmt"
	"math"
)

var ErrNotFound = errors.New("station not found")

type Station struct {
	ID          int64   `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Name        string  `json:"name"`
	OpeningHour string  `json:"openingHour"`
	ClosingHour string  `json:"closingHour"`
	Phone       string  `json:"phone"`
}

// Input is the body of create and update requests. Nil fields are left
// unchanged on update.
type Input struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Name        *string  `json:"name"`
	OpeningHour *string  `json:"openingHour"`
	ClosingHour *string  `json:"closingHour"`
	Phone       *string  `json:"phone"`
}

// ValidateCreate requires both coordinates.
func (in Input) ValidateCreate() error {
	if in.Lat == nil || in.Lng == nil {
		return errors.New("lat and lng are required")
	}
	return in.ValidateUpdate()
}

// ValidateUpdate checks the coordinates that are present.
func (in Input) ValidateUpdate() error {
	if in.Lat != nil {
		if v := *in.Lat; math.IsNaN(v) || v < -90 || v > 90 {
			return fmt.Errorf("lat %v out of range [-90, 90]", v)
		}
	}
	if in.Lng != nil {
		if v := *in.Lng; math.IsNaN(v) || v < -180 || v > 180 {
			return fmt.Errorf("lng %v out of range [-180, 180]", v)
		}
	}
	return nil
}
