package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration for the dashboard
	Server ServerConfig `mapstructure:"server"`

	// Fetcher configuration
	Fetcher FetcherConfig `mapstructure:"fetcher"`

	// Analysis configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds dashboard server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb" validate:"min=1"`
}

// Addr returns the listen address of the dashboard server
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// FetcherConfig holds page fetching configuration
type FetcherConfig struct {
	Driver            string        `mapstructure:"driver" validate:"oneof=browser http"`
	RenderWait        time.Duration `mapstructure:"render_wait" validate:"min=0"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"min=0"`
	UserAgent         string        `mapstructure:"user_agent"`
	Headless          bool          `mapstructure:"headless"`
	ChromePath        string        `mapstructure:"chrome_path"`
	WindowWidth       int           `mapstructure:"window_width" validate:"min=1"`
	WindowHeight      int           `mapstructure:"window_height" validate:"min=1"`
	FollowRobotsTxt   bool          `mapstructure:"follow_robots_txt"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"min=0"`
}

// AnalysisConfig holds metric and pipeline configuration
type AnalysisConfig struct {
	SummarySentences int  `mapstructure:"summary_sentences" validate:"min=0"`
	RecordFailures   bool `mapstructure:"record_failures"`
}

// OutputConfig holds result export configuration
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=xlsx csv"`
	Report string `mapstructure:"report" validate:"omitempty,oneof=json yaml html markdown"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Verbose    bool   `mapstructure:"verbose"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file, .env and environment
func Load(configPath string) (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.articlemetrics")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults only
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30m")
	v.SetDefault("server.max_upload_mb", 32)

	// Fetcher defaults
	v.SetDefault("fetcher.driver", "browser")
	v.SetDefault("fetcher.render_wait", "3s")
	v.SetDefault("fetcher.timeout", "60s")
	v.SetDefault("fetcher.user_agent", "ArticleMetrics/1.0")
	v.SetDefault("fetcher.headless", true)
	v.SetDefault("fetcher.window_width", 1920)
	v.SetDefault("fetcher.window_height", 1080)
	v.SetDefault("fetcher.follow_robots_txt", false)
	v.SetDefault("fetcher.requests_per_second", 0)

	// Analysis defaults
	v.SetDefault("analysis.summary_sentences", 5)
	v.SetDefault("analysis.record_failures", false)

	// Output defaults
	v.SetDefault("output.path", "Output_Data_Structure.xlsx")
	v.SetDefault("output.format", "")
	v.SetDefault("output.report", "")

	// Logging defaults
	v.SetDefault("logging.verbose", false)
	v.SetDefault("logging.output_path", "stdout")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("ARTICLEMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars
	v.BindEnv("fetcher.chrome_path", "CHROME_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// NewLogger builds the application logger from the logging configuration.
// The returned closer must be called once logging is done.
func (c *Config) NewLogger() (*log.Logger, io.Closer, error) {
	switch c.Logging.OutputPath {
	case "", "stdout":
		return log.New(os.Stdout, "", 0), io.NopCloser(nil), nil
	case "stderr":
		return log.New(os.Stderr, "", 0), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(c.Logging.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "", log.LstdFlags), f, nil
}
