package stations

import (
	"database/sql"
	"net/http"

	"stationmap/internal/modules/stations/controller"
	"stationmap/internal/modules/stations/repository"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB) {
	stationRepository := repository.NewRepository(db)
	stationsController := controller.NewStationsController(stationRepository)
	stationsController.RegisterRoutes(mux)
}
