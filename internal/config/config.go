package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceSeed   = "seed"
	SourceRemote = "remote"
)

// Base holds the settings shared by every binary in this repository.
type Base struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string
}

// Config is the locator server configuration.
type Config struct {
	Base

	MarkerSource string
	SeedFile     string

	StationsAPIURL     string
	StationsAPITimeout time.Duration
	RemoteSync         bool

	// FormPrefill seeds the editor fields from the selected marker. Off by
	// default: the form starts empty on every selection.
	FormPrefill bool

	TileURL   string
	CenterLat float64
	CenterLng float64
	Zoom      float64

	SessionTTL time.Duration

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// StationsAPIConfig is the configuration of the development station service.
type StationsAPIConfig struct {
	Base

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

// loadDotEnv reads .env from the working directory if it exists. Variables
// already present in the environment are never overwritten.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func loadBase(defaultAddr string) (Base, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Base{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Base{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = defaultAddr
	}

	return Base{
		AppEnv:   appEnv,
		LogLevel: level,
		HTTPAddr: httpAddr,
	}, nil
}

func LoadFromEnv() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	base, err := loadBase(":8080")
	if err != nil {
		return Config{}, err
	}

	source := strings.ToLower(strings.TrimSpace(os.Getenv("MARKER_SOURCE")))
	if source == "" {
		source = SourceSeed
	}
	switch source {
	case SourceSeed, SourceRemote:
	default:
		return Config{}, fmt.Errorf("invalid MARKER_SOURCE %q (allowed: seed, remote)", source)
	}

	seedFile := strings.TrimSpace(os.Getenv("SEED_FILE"))
	if seedFile != "" {
		seedFile, err = filepath.Abs(seedFile)
		if err != nil {
			return Config{}, fmt.Errorf("SEED_FILE %q: %w", seedFile, err)
		}
	}

	apiURL := strings.TrimSpace(os.Getenv("STATIONS_API_URL"))
	if apiURL == "" {
		apiURL = "http://localhost:8081/api/stations"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	apiTimeout, err := envDuration("STATIONS_API_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if apiTimeout <= 0 {
		return Config{}, fmt.Errorf("STATIONS_API_TIMEOUT must be positive, got %v", apiTimeout)
	}

	remoteSync, err := envBool("REMOTE_SYNC", false)
	if err != nil {
		return Config{}, err
	}
	formPrefill, err := envBool("FORM_PREFILL", false)
	if err != nil {
		return Config{}, err
	}

	tileURL := strings.TrimSpace(os.Getenv("TILE_URL"))
	if tileURL == "" {
		tileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	}

	centerLat, err := envFloat("MAP_CENTER_LAT", "54.038")
	if err != nil {
		return Config{}, err
	}
	if centerLat < -90 || centerLat > 90 {
		return Config{}, fmt.Errorf("MAP_CENTER_LAT out of range: %v", centerLat)
	}
	centerLng, err := envFloat("MAP_CENTER_LNG", "21.767")
	if err != nil {
		return Config{}, err
	}
	if centerLng < -180 || centerLng > 180 {
		return Config{}, fmt.Errorf("MAP_CENTER_LNG out of range: %v", centerLng)
	}
	zoom, err := envFloat("MAP_ZOOM", "13.5")
	if err != nil {
		return Config{}, err
	}

	sessionTTL, err := envDuration("SESSION_TTL", "30m")
	if err != nil {
		return Config{}, err
	}
	if sessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %v", sessionTTL)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	mqttPort, err := envInt("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "stationmap-server"
	}
	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "stationmap/markers"
	}

	return Config{
		Base:               base,
		MarkerSource:       source,
		SeedFile:           seedFile,
		StationsAPIURL:     apiURL,
		StationsAPITimeout: apiTimeout,
		RemoteSync:         remoteSync,
		FormPrefill:        formPrefill,
		TileURL:            tileURL,
		CenterLat:          centerLat,
		CenterLng:          centerLng,
		Zoom:               zoom,
		SessionTTL:         sessionTTL,
		MQTTBroker:         mqttBroker,
		MQTTPort:           mqttPort,
		MQTTClientID:       mqttClientID,
		MQTTTopic:          mqttTopic,
	}, nil
}

func LoadStationsAPIFromEnv() (StationsAPIConfig, error) {
	if err := loadDotEnv(); err != nil {
		return StationsAPIConfig{}, err
	}

	base, err := loadBase(":8081")
	if err != nil {
		return StationsAPIConfig{}, err
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "data/stations.db"
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", "1")
	if err != nil {
		return StationsAPIConfig{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", "1")
	if err != nil {
		return StationsAPIConfig{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return StationsAPIConfig{}, err
	}
	logSQL, err := envBool("DB_LOG_SQL", false)
	if err != nil {
		return StationsAPIConfig{}, err
	}

	return StationsAPIConfig{
		Base:            base,
		Driver:          driver,
		DSN:             dsn,
		Path:            path,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
		LogSQL:          logSQL,
	}, nil
}

func envInt(key, def string) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envFloat(key, def string) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: not a finite number", key, s)
	}
	return f, nil
}

func envDuration(key, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
