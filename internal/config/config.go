package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Langfuse LangfuseConfig `yaml:"langfuse" mapstructure:"langfuse"`
	Analyze  AnalyzeConfig  `yaml:"analyze" mapstructure:"analyze"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// LangfuseConfig holds Langfuse API credentials.
type LangfuseConfig struct {
	Host      string `yaml:"host" mapstructure:"host"`
	PublicKey string `yaml:"public_key" mapstructure:"public_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
}

// AnalyzeConfig configures the analysis run.
type AnalyzeConfig struct {
	// RecentDays limits the fetch to traces from the last N days.
	// Zero fetches everything.
	RecentDays int `yaml:"recent_days" mapstructure:"recent_days"`
	// TracePageLimit is the per-page size for the trace fetch.
	TracePageLimit int `yaml:"trace_page_limit" mapstructure:"trace_page_limit"`
	// ObservationPageLimit is the per-page size for the observation fetch.
	ObservationPageLimit int `yaml:"observation_page_limit" mapstructure:"observation_page_limit"`
}

// ServerConfig configures the results API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRACELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("langfuse.host", "https://cloud.langfuse.com")
	v.SetDefault("analyze.recent_days", 0)
	v.SetDefault("analyze.trace_page_limit", 50)
	v.SetDefault("analyze.observation_page_limit", 100)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the Langfuse credentials needed for a fetch are
// present. Returning all missing keys at once mirrors what a user has to
// fix in one sitting.
func (c *Config) Validate() error {
	var missing []string
	if c.Langfuse.Host == "" {
		missing = append(missing, "langfuse.host")
	}
	if c.Langfuse.PublicKey == "" {
		missing = append(missing, "langfuse.public_key")
	}
	if c.Langfuse.SecretKey == "" {
		missing = append(missing, "langfuse.secret_key")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
