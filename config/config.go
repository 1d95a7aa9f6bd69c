package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/tnicklin/actuator_loglevels/awsutil"
	"github.com/tnicklin/actuator_loglevels/discord"
	"github.com/tnicklin/actuator_loglevels/logger"
	"github.com/tnicklin/actuator_loglevels/store"
	"go.uber.org/config"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// TransitionConfig locates the directive parameter, the credentials secret
// and the service whose loggers are changed.
type TransitionConfig struct {
	SecretID        string        `yaml:"secret_id"`
	ParameterName   string        `yaml:"parameter_name"`
	ServiceEndpoint string        `yaml:"service_endpoint"`
	StrictStatus    bool          `yaml:"strict_status"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	UserAgent       string        `yaml:"user_agent"`
	HTTPClient      *http.Client  `yaml:"-"`
}

// Defaults applies default values to the config.
func (c *TransitionConfig) Defaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "actuator-loglevels/1.0"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.RequestTimeout}
	}
}

// Validate checks the values the handler cannot run without.
func (c TransitionConfig) Validate() error {
	var errs []error
	if c.SecretID == "" {
		errs = append(errs, errors.New("transition.secret_id (AWS_ACTUATOR_SECRET) is required"))
	}
	if c.ParameterName == "" {
		errs = append(errs, errors.New("transition.parameter_name (LOGS_PARAM) is required"))
	}
	if c.ServiceEndpoint == "" {
		errs = append(errs, errors.New("transition.service_endpoint (SERVICE_ENDPOINT) is required"))
	} else if u, err := url.Parse(c.ServiceEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("transition.service_endpoint %q is not an absolute url", c.ServiceEndpoint))
	}
	return errors.Join(errs...)
}

// AppConfig holds all application configuration.
type AppConfig struct {
	Logger     logger.Config    `yaml:"logger"`
	AWS        awsutil.Config   `yaml:"aws"`
	Transition TransitionConfig `yaml:"transition"`
	Store      store.Config     `yaml:"store"`
	Discord    discord.Config   `yaml:"discord"`
}

// Load reads the embedded defaults, expanding ${VAR:default} references from
// the environment, then merges the given YAML files in order. Later files
// override earlier ones. Missing files are silently ignored.
func Load(files ...string) (*AppConfig, error) {
	return load(os.LookupEnv, files...)
}

func load(lookup config.LookupFunc, files ...string) (*AppConfig, error) {
	opts := []config.YAMLOption{
		config.Source(bytes.NewReader(defaultsYAML)),
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			opts = append(opts, config.File(f))
		}
	}
	opts = append(opts, config.Expand(lookup))

	provider, err := config.NewYAML(opts...)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration with sensible defaults.
func LoadWithDefaults(files ...string) (*AppConfig, error) {
	cfg, err := Load(files...)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if len(cfg.Logger.OutputPaths) == 0 {
		cfg.Logger.OutputPaths = []string{"stdout"}
	}
	cfg.Transition.Defaults()
}
