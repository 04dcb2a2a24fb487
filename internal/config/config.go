package config

import (
	"time"

	pkgconfig "github.com/xavierspacelix/jamming/pkg/config"
	"github.com/xavierspacelix/jamming/pkg/pubsub"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Bus       pubsub.Config
	Stream    StreamConfig
	Queue     QueueConfig
	Search    SearchConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig is the shared client used by the search cache and limiter.
// The bus keeps its own connection settings under bus.redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string
	DB       int
}

type StreamConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	SubscriberBuffer  int           `mapstructure:"subscriber_buffer"`
}

type QueueConfig struct {
	// StrictReorder rejects reorder lists that omit room entries instead
	// of appending the omitted ones after the supplied order.
	StrictReorder bool `mapstructure:"strict_reorder"`
}

type SearchConfig struct {
	YouTubeAPIKey string        `mapstructure:"youtube_api_key"`
	CachePrefix   string        `mapstructure:"cache_prefix"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

type RateLimitConfig struct {
	Enabled bool
	Prefix  string
	Limit   int
	Window  time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "jamming")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/jamming.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("bus.enabled", false)
	v.SetDefault("bus.driver", "redis")
	v.SetDefault("bus.redis.address", "localhost:6379")
	v.SetDefault("bus.redis.pool_size", 10)
	v.SetDefault("bus.redis.read_timeout", "3s")
	v.SetDefault("bus.redis.write_timeout", "3s")
	v.SetDefault("bus.kafka.brokers", "localhost:9092")
	v.SetDefault("bus.kafka.group_id", "jamming-bus")
	v.SetDefault("bus.kafka.partitions", 4)
	v.SetDefault("stream.heartbeat_interval", "15s")
	v.SetDefault("stream.subscriber_buffer", 8)
	v.SetDefault("queue.strict_reorder", false)
	v.SetDefault("search.youtube_api_key", "")
	v.SetDefault("search.cache_prefix", "search")
	v.SetDefault("search.cache_ttl", "10m")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.prefix", "ratelimit")
	v.SetDefault("rate_limit.limit", 5)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("log.level", "info")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("bus.enabled", "BUS_ENABLED")
	v.BindEnv("bus.driver", "BUS_DRIVER")
	v.BindEnv("bus.redis.address", "BUS_REDIS_ADDRESS")
	v.BindEnv("bus.kafka.brokers", "BUS_KAFKA_BROKERS")
	v.BindEnv("search.youtube_api_key", "YT_API_KEY")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
