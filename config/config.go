package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Env      string
	Port     string
	GRPCPort string
	DB       DB
	Redis    Redis

	KafkaBrokers []string
	KafkaTopic   string

	RateLimit string
	Location  *time.Location
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

func (r Redis) TTL() time.Duration { return time.Duration(r.TTLSeconds) * time.Second }

func Load(log *zap.Logger) *Config {
	cfg := &Config{
		Env:      getEnvDefault("ENV", "production"),
		Port:     getEnv("APP_PORT", log),
		GRPCPort: getEnvDefault("GRPC_PORT", ":50051"),
		DB:       DB{Config: loadDB(log)},
		Redis: Redis{
			Enabled:    getEnvDefault("REDIS_ENABLED", "false") == "true",
			Addr:       getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 60),
		},
		KafkaBrokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnvDefault("KAFKA_TOPIC_EVENTS", "pos.ledger.events"),
		RateLimit:    getEnvDefault("RATE_LIMIT", "300-M"),
		Location:     loadLocation(getEnvDefault("REPORT_TZ", "Local"), log),
	}
	return cfg
}

// LoadDB читает только настройки базы: их хватает cmd/migrate и cmd/seed.
func LoadDB(log *zap.Logger) database.Config {
	return loadDB(log)
}

func loadDB(log *zap.Logger) database.Config {
	driver := getEnvDefault("DB_DRIVER", database.DriverPostgres)
	if driver == database.DriverSQLite {
		return database.Config{
			Driver: driver,
			Path:   getEnvDefault("DB_PATH", "data/pos.db"),
		}
	}
	return database.Config{
		Driver:   driver,
		Host:     getEnv("DB_HOST", log),
		Port:     getEnv("DB_PORT", log),
		User:     getEnv("DB_USER", log),
		Password: getEnv("DB_PASSWORD", log),
		Name:     getEnv("DB_NAME", log),
		SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}

func loadLocation(name string, log *zap.Logger) *time.Location {
	if name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("Неизвестная таймзона, используется Local", zap.String("tz", name), zap.Error(err))
		return time.Local
	}
	return loc
}
