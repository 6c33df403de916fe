package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Tracking TrackingConfig
	Attach   AttachConfig
	Logger   LoggerConfig
}

type TrackingConfig struct {
	URI            string
	HostHeader     string
	InsecureTLS    bool
	Timeout        time.Duration
	SearchPageSize int
	Progress       bool
}

type AttachConfig struct {
	ExperimentName  string
	ModelsDir       string
	WorkDir         string
	ResumeRun       bool
	VerifyRecursive bool
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Keys shared by env vars, config files and bound flags.
const (
	KeyConfigFile      = "CONFIG_FILE"
	KeyTrackingURI     = "TRACKING_URI"
	KeyHostHeader      = "HOST_HEADER"
	KeyInsecureTLS     = "INSECURE_TLS"
	KeyHTTPTimeout     = "HTTP_TIMEOUT"
	KeySearchPageSize  = "SEARCH_PAGE_SIZE"
	KeyProgress        = "PROGRESS"
	KeyExperimentName  = "EXPERIMENT_NAME"
	KeyModelsDir       = "MODELS_DIR"
	KeyWorkDir         = "WORK_DIR"
	KeyResumeRun       = "RESUME_RUN"
	KeyVerifyRecursive = "VERIFY_RECURSIVE"
	KeyLoggerLevel     = "LOGGER_LEVEL"
	KeyLoggerFormat    = "LOGGER_FORMAT"
)

// New returns a viper instance with defaults and env lookup set up. Callers
// may bind flags to it before calling FromViper.
func New() *viper.Viper {
	v := viper.New()

	// Defaults
	v.SetDefault(KeyTrackingURI, "http://127.0.0.1:5000")
	v.SetDefault(KeyHostHeader, "mlflow.labs.itmo.loc")
	v.SetDefault(KeyInsecureTLS, true)
	v.SetDefault(KeyHTTPTimeout, "30s")
	v.SetDefault(KeySearchPageSize, 1000)
	v.SetDefault(KeyProgress, false)
	v.SetDefault(KeyExperimentName, "Iris Classification Training")
	v.SetDefault(KeyModelsDir, filepath.Join(os.TempDir(), "mlflow_models"))
	v.SetDefault(KeyWorkDir, os.TempDir())
	v.SetDefault(KeyResumeRun, true)
	v.SetDefault(KeyVerifyRecursive, false)
	v.SetDefault(KeyLoggerLevel, "info")
	v.SetDefault(KeyLoggerFormat, "text")

	// Env; an empty value is honoured so HOST_HEADER= disables the header.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	return v
}

func FromViper(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString(KeyHTTPTimeout))
	if err != nil {
		timeout = 30 * time.Second
	}

	cfg := &Config{
		Tracking: TrackingConfig{
			URI:            strings.TrimRight(v.GetString(KeyTrackingURI), "/"),
			HostHeader:     v.GetString(KeyHostHeader),
			InsecureTLS:    v.GetBool(KeyInsecureTLS),
			Timeout:        timeout,
			SearchPageSize: v.GetInt(KeySearchPageSize),
			Progress:       v.GetBool(KeyProgress),
		},
		Attach: AttachConfig{
			ExperimentName:  v.GetString(KeyExperimentName),
			ModelsDir:       v.GetString(KeyModelsDir),
			WorkDir:         v.GetString(KeyWorkDir),
			ResumeRun:       v.GetBool(KeyResumeRun),
			VerifyRecursive: v.GetBool(KeyVerifyRecursive),
		},
		Logger: LoggerConfig{
			Level:  v.GetString(KeyLoggerLevel),
			Format: v.GetString(KeyLoggerFormat),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Tracking.URI)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", KeyTrackingURI, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", KeyTrackingURI, c.Tracking.URI)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: host is required", KeyTrackingURI, c.Tracking.URI)
	}
	if strings.TrimSpace(c.Attach.ExperimentName) == "" {
		return errors.New(KeyExperimentName + " is required")
	}
	if c.Tracking.SearchPageSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeySearchPageSize, c.Tracking.SearchPageSize)
	}
	if c.Attach.ModelsDir == "" {
		return errors.New(KeyModelsDir + " is required")
	}
	if c.Attach.WorkDir == "" {
		return errors.New(KeyWorkDir + " is required")
	}
	return nil
}
