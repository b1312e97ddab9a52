package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type StreamConfig struct {
	URL            string        `yaml:"url" validate:"required"`
	APIKey         string        `yaml:"apiKey"`
	BoundingBoxes  [][][]float64 `yaml:"boundingBoxes"`
	MessageTypes   []string      `yaml:"messageTypes"`
	ReconnectDelay time.Duration `yaml:"reconnectDelay" validate:"required|min:1"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
}

type IngestConfig struct {
	MinInterval time.Duration `yaml:"minInterval" validate:"required|min:1"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver" validate:"required|in:sqlite,postgres"`
	Path      string `yaml:"path"`
	DSN       string `yaml:"dsn"`
	ReadConns int    `yaml:"readConns"`
}

type QueryConfig struct {
	DefaultHours int `yaml:"defaultHours" validate:"required|min:1"`
	MaxHours     int `yaml:"maxHours"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type NatsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type MaintenanceConfig struct {
	Interval      time.Duration `yaml:"interval"`
	StatsInterval time.Duration `yaml:"statsInterval"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Logger      LoggerConfig      `yaml:"logger"`
	Stream      StreamConfig      `yaml:"stream"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Storage     StorageConfig     `yaml:"storage"`
	Query       QueryConfig       `yaml:"query"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Nats        NatsConfig        `yaml:"nats"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}
