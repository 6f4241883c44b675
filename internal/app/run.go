package app

import (
	"context"
	"log/slog"
	"time"

	"stationmap/internal/config"
	httpapi "stationmap/internal/httpapi"
	"stationmap/internal/modules/markers"
	"stationmap/internal/modules/markers/session"
	markerviews "stationmap/internal/modules/markers/views"
	"stationmap/internal/mqtt"
)

// Run starts the station locator and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"markerSource", cfg.MarkerSource,
		"seedFile", cfg.SeedFile,
		"stationsAPIURL", cfg.StationsAPIURL,
		"stationsAPITimeout", cfg.StationsAPITimeout,
		"remoteSync", cfg.RemoteSync,
		"formPrefill", cfg.FormPrefill,
		"sessionTTL", cfg.SessionTTL,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	if err := markerviews.LoadTemplates(); err != nil {
		return err
	}

	var (
		publisher *mqtt.Publisher
		events    session.Publisher
	)
	if cfg.MQTTBroker != "" {
		publisher = mqtt.NewPublisher(cfg, logger)
		events = publisher

		// A short timeout keeps startup responsive when the broker is down;
		// the client keeps retrying in the background.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without events until it connects)", "error", err)
		}
	} else {
		logger.Info("mqtt disabled: MQTT_BROKER is empty")
	}

	mux := httpapi.NewMux(nil)
	sessions, err := markers.RegisterFeature(mux, cfg, events, logger)
	if err != nil {
		return err
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go sessions.Run(janitorCtx)

	srv := httpapi.NewServer(cfg.HTTPAddr, mux, logger)
	return serve(ctx, srv, logger, func() {
		stopJanitor()
		if publisher != nil {
			logger.Info("mqtt disconnecting")
			publisher.Disconnect()
		}
	})
}
