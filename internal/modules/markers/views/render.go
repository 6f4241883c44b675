package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"stationmap/internal/modules/markers/types"
)

var pageTmpl *template.Template

// loadTemplatesFromFS loads the map templates from the given fs and dir.
// Tests use it to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// MarkerItem is a marker as listed under the map.
type MarkerItem struct {
	Index   int
	Lat     float64
	Lng     float64
	Details types.Details
	New     bool
}

// MapData is the view model for the map page.
type MapData struct {
	TileURL   string
	CenterLat float64
	CenterLng float64
	Zoom      float64
	Mode      types.Mode
	Loading   bool
	Markers   []MarkerItem
}

// ModeLabel is the interaction mode shown in the toolbar.
func (d *MapData) ModeLabel() string {
	if d.Mode == "" {
		return string(types.ModeIdle)
	}
	return string(d.Mode)
}

func RenderMap(w io.Writer, data *MapData) error {
	if pageTmpl == nil {
		return errors.New("map template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "map.html", data)
}

// Items converts store markers into list entries.
func Items(markers []types.Marker) []MarkerItem {
	out := make([]MarkerItem, len(markers))
	for i, m := range markers {
		out[i] = MarkerItem{
			Index:   i,
			Lat:     m.Position.Lat(),
			Lng:     m.Position.Lng(),
			Details: m.Details,
			New:     m.IconKind == types.IconNew,
		}
	}
	return out
}
