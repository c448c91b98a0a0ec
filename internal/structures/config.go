package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	NoColor    bool
}

type ApiConfig struct {
	BaseURL string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Timeout time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size" validate:"min:0"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type HistoryConfig struct {
	ToastDuration time.Duration `yaml:"toastDuration" validate:"required|min:1"`
	Unauthorized  string        `yaml:"unauthorized" validate:"in:throw,returnNull"`
}

type Config struct {
	AppName string
	Debug   bool
	NoColor bool
	Path    string
	Api     ApiConfig     `yaml:"api"`
	Logger  LoggerConfig  `yaml:"logger"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
	History HistoryConfig `yaml:"history"`
}

type Route struct {
	Url     string
	Handler http.Handler
}
