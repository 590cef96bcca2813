package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	OCR      OCRConfig
	Jobx     JobxConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
	BodyLimit   int
	Debug       bool
	Version     string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StorageConfig selects where uploaded PDFs and OCR output are kept.
type StorageConfig struct {
	Mode      string // local | s3
	UploadDir string
	AWSRegion string
	AWSBucket string
	Prefix    string
}

type OCRConfig struct {
	InvokeURL  string
	Secret     string
	Lang       string
	Timeout    time.Duration
	MaxRetries int
	// Workers bounds concurrent page requests for one document.
	Workers int
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			BodyLimit:   getEnvInt("BODY_LIMIT_MB", 20) * 1024 * 1024,
			Debug:       getEnvBool("DEBUG", false),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "saenggibu"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Mode:      getEnv("STORAGE_MODE", "local"),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
			AWSRegion: getEnv("AWS_REGION", "ap-northeast-2"),
			AWSBucket: getEnv("AWS_BUCKET", "saenggibu-uploads"),
			Prefix:    getEnv("STORAGE_PREFIX", ""),
		},
		OCR: OCRConfig{
			InvokeURL:  getEnv("CLOVA_OCR_INVOKE_URL", ""),
			Secret:     getEnv("CLOVA_OCR_SECRET", ""),
			Lang:       getEnv("OCR_LANG", "ko"),
			Timeout:    getEnvDuration("OCR_TIMEOUT", 60*time.Second),
			MaxRetries: getEnvInt("OCR_MAX_RETRIES", 3),
			Workers:    getEnvInt("OCR_WORKERS", 4),
		},
		Jobx: loadJobxConfig(),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s") or bare seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
