package markers

import (
	"fmt"
	"log/slog"
	"net/http"

	"stationmap/internal/config"
	"stationmap/internal/modules/markers/controller"
	"stationmap/internal/modules/markers/session"
	"stationmap/internal/modules/markers/source"
	"stationmap/internal/modules/markers/stationclient"
)

// RegisterFeature wires the marker feature onto mux and returns the session
// manager so the caller can run its janitor. A nil publisher disables events.
func RegisterFeature(mux *http.ServeMux, cfg config.Config, publisher session.Publisher, logger *slog.Logger) (*session.Manager, error) {
	client := stationclient.New(cfg.StationsAPIURL, cfg.StationsAPITimeout, logger)

	src, err := newSource(cfg, client)
	if err != nil {
		return nil, err
	}

	opts := session.Options{
		Source:      src,
		Publisher:   publisher,
		FormPrefill: cfg.FormPrefill,
		TTL:         cfg.SessionTTL,
		LoadTimeout: cfg.StationsAPITimeout,
		Logger:      logger,
	}
	if cfg.RemoteSync {
		opts.Syncer = client
	}
	sessions := session.NewManager(opts)

	markersController := controller.NewMarkersController(sessions, controller.MapSettings{
		TileURL:   cfg.TileURL,
		CenterLat: cfg.CenterLat,
		CenterLng: cfg.CenterLng,
		Zoom:      cfg.Zoom,
	})
	markersController.RegisterRoutes(mux)

	logger.Info("markers feature registered",
		"source", cfg.MarkerSource,
		"remote_sync", cfg.RemoteSync,
		"form_prefill", cfg.FormPrefill,
	)
	return sessions, nil
}

func newSource(cfg config.Config, client *stationclient.Client) (source.Source, error) {
	switch cfg.MarkerSource {
	case config.SourceRemote:
		return source.NewRemote(client), nil
	case config.SourceSeed, "":
		if cfg.SeedFile == "" {
			return source.DefaultSeed(), nil
		}
		seed, err := source.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		return seed, nil
	default:
		return nil, fmt.Errorf("unknown marker source %q", cfg.MarkerSource)
	}
}
