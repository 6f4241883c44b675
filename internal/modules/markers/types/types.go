package types

import "strings"

const (
	PlaceholderName  = "Nowa stacja"
	PlaceholderHours = "9:00-18:00"
	PlaceholderPhone = "123-456-789"

	HoursPrefix = "Godziny otwarcia: "
	PhonePrefix = "Telefon: "
)

// IconKind selects the glyph drawn for a marker.
type IconKind string

const (
	IconDefault IconKind = "default"
	IconNew     IconKind = "new"
)

// Position is a latitude/longitude pair. It marshals as a two-element array.
type Position [2]float64

func (p Position) Lat() float64 { return p[0] }
func (p Position) Lng() float64 { return p[1] }

// Details are the three popup lines of a marker. Hours and Phone carry their
// display prefixes.
type Details struct {
	Name  string `json:"name"`
	Hours string `json:"hours"`
	Phone string `json:"phone"`
}

type Marker struct {
	Position Position `json:"position"`
	Details  Details  `json:"details"`
	IconKind IconKind `json:"iconKind"`

	// RemoteID is the identifier assigned by the station service, if any.
	RemoteID string `json:"remoteId,omitempty"`
}

// PlaceholderDetails returns the details given to markers the user has not
// described yet.
func PlaceholderDetails() Details {
	return Details{
		Name:  PlaceholderName,
		Hours: FormatHours(PlaceholderHours),
		Phone: FormatPhone(PlaceholderPhone),
	}
}

func FormatHours(raw string) string { return HoursPrefix + raw }
func FormatPhone(raw string) string { return PhonePrefix + raw }

// RawHours strips the display prefix from hours text.
func RawHours(hours string) string { return strings.TrimPrefix(hours, HoursPrefix) }

// RawPhone strips the display prefix from phone text.
func RawPhone(phone string) string { return strings.TrimPrefix(phone, PhonePrefix) }

// SplitHours splits raw hours text such as "9:00-18:00" into opening and
// closing parts. Text without a dash is returned as the opening part.
func SplitHours(raw string) (opening, closing string) {
	opening, closing, _ = strings.Cut(raw, "-")
	return strings.TrimSpace(opening), strings.TrimSpace(closing)
}

// NewMarker returns a freshly placed marker at p.
func NewMarker(p Position) Marker {
	return Marker{
		Position: p,
		Details:  PlaceholderDetails(),
		IconKind: IconNew,
	}
}

// Mode is the current interaction mode.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeAdding   Mode = "adding"
	ModeEditing  Mode = "editing"
	ModeDeleting Mode = "deleting"
)

// Command is a mode-entry command issued from the toolbar.
type Command string

const (
	CommandAdd    Command = "add"
	CommandEdit   Command = "edit"
	CommandDelete Command = "delete"
)

func ParseCommand(s string) (Command, bool) {
	switch c := Command(strings.ToLower(strings.TrimSpace(s))); c {
	case CommandAdd, CommandEdit, CommandDelete:
		return c, true
	default:
		return "", false
	}
}
