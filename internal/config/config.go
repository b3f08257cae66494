package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string `mapstructure:"service_name"` // Empty lets each binary use its own name
	LogLevel    string `mapstructure:"log_level"`
	Server      struct {
		Port            int    `mapstructure:"port"`
		Address         string `mapstructure:"address"`
		MaxConnections  int    `mapstructure:"max_connections"`  // 0 disables the limit
		ReadTimeout     string `mapstructure:"read_timeout"`     // Go duration string like "10s"
		ShutdownTimeout string `mapstructure:"shutdown_timeout"` // Go duration string like "15s"
	} `mapstructure:"server"`
	GRPC struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"grpc"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Catalog struct {
		Path string `mapstructure:"path"` // Optional .json/.yaml override of the bundled catalog
	} `mapstructure:"catalog"`
	Artwork struct {
		BatchWait     string `mapstructure:"batch_wait"`     // Go duration string like "2ms"
		BatchCapacity int    `mapstructure:"batch_capacity"` // 0 means unbounded
	} `mapstructure:"artwork"`
	GraphQL struct {
		MaxParallelism int  `mapstructure:"max_parallelism"`
		MaxDepth       int  `mapstructure:"max_depth"`
		GraphiQL       bool `mapstructure:"graphiql"`
	} `mapstructure:"graphql"`
	PersistedQueries struct {
		Enabled       bool   `mapstructure:"enabled"`
		Provider      string `mapstructure:"provider"` // "memory" or "redis"
		Size          int    `mapstructure:"size"`
		TTL           string `mapstructure:"ttl"`
		RedisAddress  string `mapstructure:"redis_address"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
	} `mapstructure:"persisted_queries"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.address", "localhost")
	v.SetDefault("server.max_connections", 0)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.port", 9091)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("catalog.path", "")
	v.SetDefault("artwork.batch_wait", "2ms")
	v.SetDefault("artwork.batch_capacity", 100)
	v.SetDefault("graphql.max_parallelism", 50)
	v.SetDefault("graphql.max_depth", 12)
	v.SetDefault("graphql.graphiql", true)
	v.SetDefault("persisted_queries.enabled", true)
	v.SetDefault("persisted_queries.provider", "memory")
	v.SetDefault("persisted_queries.size", 1000)
	v.SetDefault("persisted_queries.ttl", "24h")
	v.SetDefault("persisted_queries.redis_address", "localhost:6379")
	v.SetDefault("persisted_queries.redis_db", 0)
}

// LoadConfig reads config.yaml from the working directory (or ./config) and
// overlays APP_* environment variables on top of the defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string, falling back to def (with a
// warning) when the value is empty or malformed.
func ParseDuration(key, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}
