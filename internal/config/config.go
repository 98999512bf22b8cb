package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Pool     PoolConfig
	Auth     AuthConfig
	Exec     ExecConfig
	Stream   StreamConfig
	Worker   WorkerConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	Addr     string
	User     string
	Password string
	Database string
}

type PoolConfig struct {
	Capacity      int
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type ExecConfig struct {
	Timeout time.Duration
}

type StreamConfig struct {
	VNCHost     string
	VNCBasePort int
}

type WorkerConfig struct {
	Concurrency int
}

type MetricsConfig struct {
	Addr string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is merged in first, if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:         getEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Addr:     getEnv("POSTGRES_ADDR", "localhost:5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "helios"),
		},
		Pool: PoolConfig{
			Capacity:      getIntEnv("POOL_CAPACITY", 10),
			SessionTTL:    getDurationEnv("POOL_SESSION_TTL", 30*time.Minute),
			SweepInterval: getDurationEnv("POOL_SWEEP_INTERVAL", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("AUTH_JWT_SECRET", "helios-dev-secret"),
			TokenTTL:   getDurationEnv("AUTH_TOKEN_TTL", 24*time.Hour),
			BcryptCost: getIntEnv("AUTH_BCRYPT_COST", 13),
		},
		Exec: ExecConfig{
			Timeout: getDurationEnv("EXEC_TIMEOUT", 10*time.Second),
		},
		Stream: StreamConfig{
			VNCHost:     getEnv("STREAM_VNC_HOST", "localhost"),
			VNCBasePort: getIntEnv("STREAM_VNC_BASE_PORT", 5900),
		},
		Worker: WorkerConfig{
			Concurrency: getIntEnv("WORKER_CONCURRENCY", 5),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":9090"),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
