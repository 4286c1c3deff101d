// Package config provides settings loading and validation for paramspace.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// EnvPrefix is the environment variable prefix for settings overrides.
const EnvPrefix = "PARAMSPACE"

// Config holds all settings for the paramspace CLI and server.
type Config struct {
	Expansion ExpansionConfig `mapstructure:"expansion"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
}

// ExpansionConfig bounds and reports configuration expansion.
type ExpansionConfig struct {
	ClassKey        string `mapstructure:"class_key"        validate:"required"`
	MaxCombinations int    `mapstructure:"max_combinations" validate:"gte=0"`
	Progress        bool   `mapstructure:"progress"`
}

// OutputConfig controls how results are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=table json yaml"`
	Limit  int    `mapstructure:"limit"  validate:"gte=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  validate:"gte=0,lte=1"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	Prometheus   bool    `mapstructure:"prometheus"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"             validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CacheSize       int           `mapstructure:"cache_size"       validate:"gte=0"`
	RateLimit       float64       `mapstructure:"rate_limit"       validate:"gte=0"`
	RateBurst       int           `mapstructure:"rate_burst"       validate:"gte=1"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig loads settings from file and environment variables. An empty
// configPath searches the default locations; a missing file there is not an
// error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("paramspace")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/paramspace")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, validateErr
	}

	return &config, nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Expansion: ExpansionConfig{
			ClassKey:        DefaultClassKey,
			MaxCombinations: DefaultMaxCombinations,
			Progress:        DefaultProgress,
		},
		Output:  OutputConfig{Format: DefaultOutputFormat, Limit: DefaultOutputLimit},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Telemetry: TelemetryConfig{
			Environment: DefaultEnvironment,
			SampleRatio: DefaultSampleRatio,
		},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			CacheSize:       DefaultCacheSize,
			RateBurst:       DefaultRateBurst,
		},
	}
}

func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	// Expansion defaults.
	viperCfg.SetDefault("expansion.class_key", def.Expansion.ClassKey)
	viperCfg.SetDefault("expansion.max_combinations", def.Expansion.MaxCombinations)
	viperCfg.SetDefault("expansion.progress", def.Expansion.Progress)

	// Output defaults.
	viperCfg.SetDefault("output.format", def.Output.Format)
	viperCfg.SetDefault("output.limit", def.Output.Limit)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", def.Telemetry.SampleRatio)
	viperCfg.SetDefault("telemetry.environment", def.Telemetry.Environment)
	viperCfg.SetDefault("telemetry.prometheus", false)

	// Server defaults.
	viperCfg.SetDefault("server.host", def.Server.Host)
	viperCfg.SetDefault("server.port", def.Server.Port)
	viperCfg.SetDefault("server.read_timeout", def.Server.ReadTimeout.String())
	viperCfg.SetDefault("server.write_timeout", def.Server.WriteTimeout.String())
	viperCfg.SetDefault("server.idle_timeout", def.Server.IdleTimeout.String())
	viperCfg.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout.String())
	viperCfg.SetDefault("server.cache_size", def.Server.CacheSize)
	viperCfg.SetDefault("server.rate_limit", def.Server.RateLimit)
	viperCfg.SetDefault("server.rate_burst", def.Server.RateBurst)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks settings against their field constraints. Every failing
// field is listed in the returned error, which wraps ErrInvalidSettings.
func Validate(config *Config) error {
	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "gte", "gt", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
