package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"stationmap/internal/modules/markers/editor"
	"stationmap/internal/modules/markers/interaction"
	"stationmap/internal/modules/markers/sharing"
	"stationmap/internal/modules/markers/types"
	"stationmap/internal/modules/markers/views"
	"stationmap/internal/utils"
)

func (c *markersControllerImpl) handleMap(w http.ResponseWriter, r *http.Request) {
	v := c.session(w, r).View()
	data := &views.MapData{
		TileURL:   c.settings.TileURL,
		CenterLat: c.settings.CenterLat,
		CenterLng: c.settings.CenterLng,
		Zoom:      c.settings.Zoom,
		Mode:      v.Mode,
		Loading:   v.Loading,
		Markers:   views.Items(v.Markers),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderMap(w, data); err != nil {
		slog.Error("map template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
}

func (c *markersControllerImpl) handleState(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, newStateJSON(c.session(w, r).View()))
}

func (c *markersControllerImpl) handleCommand(w http.ResponseWriter, r *http.Request) {
	s := c.session(w, r)
	cmd, ok := types.ParseCommand(r.PathValue("command"))
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, interaction.ErrUnknownCommand.Error()+": "+r.PathValue("command"))
		return
	}
	if err := s.Command(cmd); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, newStateJSON(s.View()))
}

func (c *markersControllerImpl) handleMapClick(w http.ResponseWriter, r *http.Request) {
	s := c.session(w, r)
	var req clickRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := req.position()
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.MapClick(r.Context(), p)
	utils.WriteJSON(w, http.StatusOK, newStateJSON(s.View()))
}

func (c *markersControllerImpl) handleMarkerClick(w http.ResponseWriter, r *http.Request) {
	s := c.session(w, r)
	i, err := parseIndex(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.MarkerClick(i)
	utils.WriteJSON(w, http.StatusOK, newStateJSON(s.View()))
}

func (c *markersControllerImpl) handleQR(w http.ResponseWriter, r *http.Request) {
	s := c.session(w, r)
	i, err := parseIndex(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, ok := s.MarkerAt(i)
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "marker not found")
		return
	}
	png, err := sharing.QRCode(m, sharing.DefaultSize)
	if err != nil {
		slog.Error("qr render failed", "index", i, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		slog.Error("qr write failed", "error", err)
	}
}

func (c *markersControllerImpl) handleFormFields(w http.ResponseWriter, r *http.Request) {
	s := c.session(w, r)
	var f editor.Fields
	if err := utils.DecodeJSON(w, r, &f); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.SetFields(f)
	utils.WriteJSON(w, http.StatusOK, newStateJSON(s.View()))
}

func (c *markersControllerImpl) handleFormSave(w http.ResponseWriter, r *http.Request) {
	s := c.session(w, r)
	if _, err := s.Save(r.Context()); err != nil {
		writeFormError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newStateJSON(s.View()))
}

func (c *markersControllerImpl) handleFormDelete(w http.ResponseWriter, r *http.Request) {
	s := c.session(w, r)
	if _, err := s.Delete(r.Context()); err != nil {
		writeFormError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newStateJSON(s.View()))
}

func writeFormError(w http.ResponseWriter, err error) {
	if errors.Is(err, editor.ErrNoSelection) {
		utils.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	slog.Error("form action failed", "error", err)
	utils.WriteError(w, http.StatusInternalServerError, err.Error())
}
