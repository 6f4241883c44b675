// Package editor stages edits to the selected marker until they are saved or
// the marker is deleted.
package editor

import (
	"errors"

	"stationmap/internal/modules/markers/interaction"
	"stationmap/internal/modules/markers/store"
	"stationmap/internal/modules/markers/types"
)

var ErrNoSelection = errors.New("no marker selected")

// Fields are the raw values typed into the form, without display prefixes.
type Fields struct {
	Name  string `json:"name"`
	Hours string `json:"hours"`
	Phone string `json:"phone"`
}

// Result describes a committed form action.
type Result struct {
	Index  int
	Marker types.Marker
}

type Form struct {
	fields  Fields
	prefill bool
}

// New returns an empty form. With prefill set, Activate copies the selected
// marker's details into the fields; otherwise every activation starts empty.
func New(prefill bool) *Form {
	return &Form{prefill: prefill}
}

// Active reports whether the form is shown, which requires a selection.
func (f *Form) Active(c *interaction.Controller) bool {
	_, ok := c.Selection()
	return ok
}

// Activate resets the fields for a newly selected marker.
func (f *Form) Activate(m types.Marker) {
	if !f.prefill {
		f.fields = Fields{}
		return
	}
	f.fields = Fields{
		Name:  m.Details.Name,
		Hours: types.RawHours(m.Details.Hours),
		Phone: types.RawPhone(m.Details.Phone),
	}
}

func (f *Form) Fields() Fields { return f.fields }

func (f *Form) SetFields(v Fields) { f.fields = v }

// Details builds marker details from the staged fields.
func (f *Form) Details() types.Details {
	return types.Details{
		Name:  f.fields.Name,
		Hours: types.FormatHours(f.fields.Hours),
		Phone: types.FormatPhone(f.fields.Phone),
	}
}

// Save replaces the details of the selected marker, keeping its position,
// icon and remote id, then clears the selection and leaves editing mode.
func (f *Form) Save(s store.Store, c *interaction.Controller) (store.Store, Result, error) {
	i, ok := c.Selection()
	if !ok {
		return s, Result{}, ErrNoSelection
	}
	m, ok := s.At(i)
	if !ok {
		c.FinishEdit()
		return s, Result{}, ErrNoSelection
	}
	m.Details = f.Details()
	out, _ := s.ReplaceAt(i, m)
	c.FinishEdit()
	return out, Result{Index: i, Marker: m}, nil
}

// Delete removes the selected marker, clears the selection and leaves both
// editing and deleting modes.
func (f *Form) Delete(s store.Store, c *interaction.Controller) (store.Store, Result, error) {
	i, ok := c.Selection()
	if !ok {
		return s, Result{}, ErrNoSelection
	}
	m, ok := s.At(i)
	if !ok {
		c.FinishDelete()
		return s, Result{}, ErrNoSelection
	}
	out, _ := s.RemoveAt(i)
	c.FinishDelete()
	return out, Result{Index: i, Marker: m}, nil
}
