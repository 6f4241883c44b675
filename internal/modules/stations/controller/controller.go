package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"stationmap/internal/modules/stations/repository"
	"stationmap/internal/modules/stations/types"
	"stationmap/internal/utils"
)

type StationsController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type stationsControllerImpl struct {
	repository repository.StationRepository
}

func NewStationsController(repository repository.StationRepository) StationsController {
	return &stationsControllerImpl{repository: repository}
}

func (c *stationsControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stations", c.handleList)
	mux.HandleFunc("POST /api/stations", c.handleCreate)
	mux.HandleFunc("PUT /api/stations/{id}", c.handleUpdate)
}

func (c *stationsControllerImpl) handleList(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.List(r.Context())
	if err != nil {
		slog.Error("list stations failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *stationsControllerImpl) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in types.Input
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.ValidateCreate(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	station, err := c.repository.Create(r.Context(), in)
	if err != nil {
		slog.Error("create station failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to create station")
		return
	}
	slog.Info("station created", "id", station.ID, "name", station.Name)
	utils.WriteJSON(w, http.StatusCreated, station)
}

func (c *stationsControllerImpl) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "invalid station id")
		return
	}
	var in types.Input
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.ValidateUpdate(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	station, err := c.repository.Update(r.Context(), id, in)
	if errors.Is(err, types.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("update station failed", "id", id, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to update station")
		return
	}
	utils.WriteJSON(w, http.StatusOK, station)
}
