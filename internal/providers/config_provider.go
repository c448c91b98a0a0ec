package providers

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
	"time"
	"translit/internal/structures"
)

const (
	DefaultToastDuration   = 2000 * time.Millisecond
	UnauthorizedThrow      = "throw"
	UnauthorizedReturnNull = "returnNull"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.baseUrl", "http://127.0.0.1:5000")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "/tmp/translit")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 8)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "127.0.0.1:9464")
	v.SetDefault("history.toastDuration", DefaultToastDuration)
	v.SetDefault("history.unauthorized", UnauthorizedThrow)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("api.baseUrl", "TRANSLIT_API_BASE_URL")
	v.BindEnv("api.timeout", "TRANSLIT_API_TIMEOUT")
	v.BindEnv("logger.level", "TRANSLIT_LOG_LEVEL")
	v.BindEnv("cache.enabled", "TRANSLIT_CACHE_ENABLED")
	v.BindEnv("cache.size", "TRANSLIT_CACHE_SIZE")
	v.BindEnv("metrics.enabled", "TRANSLIT_METRICS_ENABLED")
	v.BindEnv("metrics.addr", "TRANSLIT_METRICS_ADDR")

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
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

	conf.AppName = "Translit"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	conf.NoColor = flags.NoColor

	return &conf, nil
}
