package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"aisd/internal/structures"
)

const (
	DefaultStreamURL      = "wss://stream.aisstream.io/v0/stream"
	DefaultReconnectDelay = 10 * time.Second
	DefaultMinInterval    = 180 * time.Second
	DefaultLookbackHours  = 24
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)

	v.BindEnv("logger.level", "AISD_LOG_LEVEL")
	v.BindEnv("stream.apiKey", "AISD_STREAM_API_KEY")
	v.BindEnv("stream.url", "AISD_STREAM_URL")
	v.BindEnv("storage.driver", "AISD_STORAGE_DRIVER")
	v.BindEnv("storage.path", "AISD_STORAGE_PATH")
	v.BindEnv("storage.dsn", "AISD_STORAGE_DSN")
	v.BindEnv("cache.enabled", "AISD_CACHE_ENABLED")
	v.BindEnv("cache.size", "AISD_CACHE_SIZE")
	v.BindEnv("nats.enabled", "AISD_NATS_ENABLED")
	v.BindEnv("nats.url", "AISD_NATS_URL")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "AisTrackDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 5000)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("stream.url", DefaultStreamURL)
	v.SetDefault("stream.boundingBoxes", [][][]float64{{{30, -25}, {72, 45}}})
	v.SetDefault("stream.reconnectDelay", DefaultReconnectDelay)
	v.SetDefault("stream.readTimeout", 2*time.Minute)
	v.SetDefault("ingest.minInterval", DefaultMinInterval)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "ais_data.db")
	v.SetDefault("storage.readConns", 8)
	v.SetDefault("query.defaultHours", DefaultLookbackHours)
	v.SetDefault("query.maxHours", 24*30)
	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("nats.subject", "ais.positions")
	v.SetDefault("maintenance.interval", 10*time.Minute)
	v.SetDefault("maintenance.statsInterval", 30*time.Second)
}
