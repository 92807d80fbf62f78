package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/placeimages/internal/caption"
	"github.com/lehigh-university-libraries/placeimages/internal/locations"
	"github.com/lehigh-university-libraries/placeimages/internal/models"
	"github.com/lehigh-university-libraries/placeimages/internal/report"
	"github.com/lehigh-university-libraries/placeimages/internal/search"
	"github.com/lehigh-university-libraries/placeimages/internal/sink"
)

// EnvPrefix prefixes every environment override, e.g. PLACEIMAGES_PIPELINE_BATCH_SIZE
const EnvPrefix = "PLACEIMAGES"

// Config holds the main configuration for the application.
type Config struct {
	Pipeline  models.PipelineConfig    `mapstructure:"pipeline"`
	Search    search.Config            `mapstructure:"search"`
	Curated   Curated                  `mapstructure:"curated"`
	Locations locations.DownloadConfig `mapstructure:"locations"`
	Kafka     sink.KafkaConfig         `mapstructure:"kafka"`
	Archive   report.ArchiveConfig     `mapstructure:"archive"`
	Caption   caption.Config           `mapstructure:"caption"`
	Server    Server                   `mapstructure:"server"`
	Output    Output                   `mapstructure:"output"`
}

// Curated locates the curated seed table
type Curated struct {
	SeedsPath string `mapstructure:"seeds_path"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	Port int `mapstructure:"port"`
}

// Output controls where run records are written
type Output struct {
	RunsDir string `mapstructure:"runs_dir"`
}

// KafkaEnabled reports whether collections should be published to Kafka
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Topic != ""
}

func setDefaults(v *viper.Viper) {
	d := models.DefaultPipelineConfig()
	v.SetDefault("pipeline.batch_size", d.BatchSize)
	v.SetDefault("pipeline.inter_batch_delay", d.InterBatchDelay)
	v.SetDefault("pipeline.inter_request_delay", d.InterRequestDelay)
	v.SetDefault("pipeline.max_retries", d.MaxRetries)
	v.SetDefault("pipeline.use_fallback_on_empty", d.UseFallbackOnEmpty)
	v.SetDefault("pipeline.images_per_location", d.ImagesPerLocation)

	v.SetDefault("search.base_url", search.DefaultBaseURL)
	v.SetDefault("search.access_key", "")
	v.SetDefault("search.auth_scheme", search.DefaultAuthScheme)
	v.SetDefault("search.color", "")
	v.SetDefault("search.request_timeout", search.DefaultRequestTimeout)
	v.SetDefault("search.user_agent", "placeimages/dev")

	v.SetDefault("curated.seeds_path", "")

	v.SetDefault("locations.cache_dir", locations.DefaultCacheDir)
	v.SetDefault("locations.force_download", false)
	v.SetDefault("locations.token", "")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "")
	v.SetDefault("kafka.batch_timeout", "100ms")

	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "runs")
	v.SetDefault("archive.use_ssl", false)

	v.SetDefault("caption.provider", "")
	v.SetDefault("caption.model", "")
	v.SetDefault("caption.temperature", caption.DefaultTemperature)
	v.SetDefault("caption.api_key", "")
	v.SetDefault("caption.base_url", "")
	v.SetDefault("caption.timeout", caption.DefaultTimeout)

	v.SetDefault("server.port", 8888)
	v.SetDefault("output.runs_dir", "runs")
}

// Load reads configuration from path, or from config.yaml in the working
// directory or ./config when path is empty. A missing default file is not an
// error; environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider conventions used by existing deployments
	if err := v.BindEnv("search.access_key", EnvPrefix+"_SEARCH_ACCESS_KEY", "UNSPLASH_ACCESS_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("Loaded config file", "path", used)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
