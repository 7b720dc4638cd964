package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Scraper ScraperConfig `yaml:"scraper" mapstructure:"scraper"`
	OGD     OGDConfig     `yaml:"ogd" mapstructure:"ogd"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig points at the AGMARKNET report page and the CORS relay used
// by the client-side strategies.
type SourceConfig struct {
	ReportURL   string `yaml:"report_url" mapstructure:"report_url"`
	ProxyURL    string `yaml:"proxy_url" mapstructure:"proxy_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScraperConfig configures the backend scraping service.
type ScraperConfig struct {
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BatchTimeoutSecs int    `yaml:"batch_timeout_secs" mapstructure:"batch_timeout_secs"`
}

// OGDConfig holds data.gov.in Open Government Data API settings.
type OGDConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	ResourceID string `yaml:"resource_id" mapstructure:"resource_id"`
}

// BatchConfig configures the chunked fallback path of batch acquisition.
type BatchConfig struct {
	ChunkSize      int `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkDelaySecs int `yaml:"chunk_delay_secs" mapstructure:"chunk_delay_secs"`
}

// StoreConfig configures the local price-history database.
type StoreConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ChunkDelay returns the pause between fallback chunks.
func (c BatchConfig) ChunkDelay() time.Duration {
	return time.Duration(c.ChunkDelaySecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MANDI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.report_url", "https://agmarknet.gov.in/PriceAndArrivals/DatewiseCommodityReport.aspx")
	v.SetDefault("source.proxy_url", "https://api.allorigins.win/get")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("scraper.base_url", "http://localhost:5000")
	v.SetDefault("scraper.timeout_secs", 30)
	v.SetDefault("scraper.batch_timeout_secs", 90)
	v.SetDefault("ogd.base_url", "https://api.data.gov.in")
	v.SetDefault("ogd.resource_id", "9ef84268-d588-465a-a308-a864a43d0070")
	v.SetDefault("batch.chunk_size", 2)
	v.SetDefault("batch.chunk_delay_secs", 3)
	v.SetDefault("store.dsn", "mandi.db")
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
