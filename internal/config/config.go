package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultTokenLifetime = 2 * time.Hour

type JWTConfig struct {
	Secret        []byte
	TokenLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	CacheTTL time.Duration
}

type ElasticConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string
	SQLitePath  string

	JWT     JWTConfig
	Redis   RedisConfig
	Elastic ElasticConfig

	KafkaBrokers []string
}

func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	lifetime, err := ParseLifetime(EnvDefault("JWT_TOKEN_LIFETIME", ""))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_TOKEN_LIFETIME: %w", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "notes"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  EnvDefault("DATABASE_SQLITE_PATH", "notes.db"),

		JWT: JWTConfig{
			Secret:        []byte(os.Getenv("JWT_SECRET")),
			TokenLifetime: lifetime,
		},
		Redis: RedisConfig{
			Enabled:  EnvBoolDefault("REDIS_ENABLED", false),
			URL:      EnvDefault("REDIS_URL", "redis://localhost:6379/0"),
			CacheTTL: time.Duration(EnvIntDefault("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Elastic: ElasticConfig{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    EnvDefault("ES_INDEX", "notes"),
		},

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
	}, nil
}

// ParseLifetime accepts "HH:MM:SS", "d.HH:MM:SS" or a Go duration ("90m").
// Empty input yields the two hour default.
func ParseLifetime(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultTokenLifetime, nil
	}
	if !strings.Contains(v, ":") {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, err
		}
		if d <= 0 {
			return 0, fmt.Errorf("lifetime must be positive, got %s", v)
		}
		return d, nil
	}

	var days int
	clock := v
	if dot := strings.Index(v, "."); dot >= 0 && dot < strings.Index(v, ":") {
		n, err := strconv.Atoi(v[:dot])
		if err != nil {
			return 0, fmt.Errorf("invalid days in %q", v)
		}
		days, clock = n, v[dot+1:]
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid lifetime %q", v)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid lifetime %q", v)
		}
		nums[i] = n
	}
	if nums[1] > 59 || nums[2] > 59 {
		return 0, fmt.Errorf("invalid lifetime %q", v)
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(nums[0])*time.Hour +
		time.Duration(nums[1])*time.Minute +
		time.Duration(nums[2])*time.Second
	if d <= 0 {
		return 0, fmt.Errorf("lifetime must be positive, got %s", v)
	}
	return d, nil
}
