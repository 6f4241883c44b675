package controller

import (
	"net/http"

	"stationmap/internal/modules/markers/session"
)

const sessionCookie = "stationmap_session"

// MapSettings configures the tile layer and initial viewport of the page.
type MapSettings struct {
	TileURL   string
	CenterLat float64
	CenterLng float64
	Zoom      float64
}

type MarkersController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type markersControllerImpl struct {
	sessions *session.Manager
	settings MapSettings
}

func NewMarkersController(sessions *session.Manager, settings MapSettings) MarkersController {
	return &markersControllerImpl{sessions: sessions, settings: settings}
}

func (c *markersControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleMap)
	mux.HandleFunc("GET /api/markers", c.handleState)
	mux.HandleFunc("POST /commands/{command}", c.handleCommand)
	mux.HandleFunc("POST /map/click", c.handleMapClick)
	mux.HandleFunc("POST /markers/{index}/click", c.handleMarkerClick)
	mux.HandleFunc("GET /markers/{index}/qr.png", c.handleQR)
	mux.HandleFunc("POST /form/fields", c.handleFormFields)
	mux.HandleFunc("POST /form/save", c.handleFormSave)
	mux.HandleFunc("POST /form/delete", c.handleFormDelete)
}

// session returns the caller's session, starting a new one and setting the
// cookie when the request carries none or an expired id.
func (c *markersControllerImpl) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if ck, err := r.Cookie(sessionCookie); err == nil {
		id = ck.Value
	}
	s, created := c.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}
