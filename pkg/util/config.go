package util

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Google     GoogleConfig
}

type ServerConfig struct {
	AppEnv      string
	Port        string
	GinMode     string
	BaseURL     string
	CorsOrigins []string
	// RateLimit is the number of requests a client may make per second.
	RateLimit uint
	// SessionLogin enables the cookie based /auth/login endpoint.
	SessionLogin bool
}

type LoggerConfig struct {
	Mode string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	Secret          string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

type GoogleConfig struct {
	ClientID string
}

// IsDevelopment reports whether the service runs in a local setup.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.Server.AppEnv) {
	case "dev", "development", "local":
		return true
	}
	return false
}

var loadDotEnv sync.Once

// LoadEnvFor reads a single variable, loading .env on first use.
func LoadEnvFor(v string) string {
	loadDotEnv.Do(func() {
		if err := godotenv.Load(); err != nil {
			LogInfo("No .env file found, using environment variables")
		}
	})
	return os.Getenv(v)
}

// LoadConfig builds the service configuration from the environment.
func LoadConfig() Config {
	return Config{
		Server: ServerConfig{
			AppEnv:       getEnv("APP_ENV", "dev"),
			Port:         getEnv("PORT", "8080"),
			GinMode:      getEnv("GIN_MODE", "debug"),
			BaseURL:      getEnv("BASE_URL", ""),
			CorsOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
			RateLimit:    uint(getEnvInt("RATE_LIMIT_PER_SECOND", 5)),
			SessionLogin: getEnvBool("SESSION_LOGIN", true),
		},
		Logger: LoggerConfig{
			Mode: getEnv("LOG_MODE", "dev"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("DATABASE_URL", "mongodb://localhost:27017"),
			Database: getEnv("DATABASE_NAME", "gamemarket"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		JWT: JWTConfig{
			Secret:          getEnv("SECRET", ""),
			RefreshSecret:   getEnv("REFRESH_SECRET", ""),
			AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 5*time.Minute),
			RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUDNAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "gamemarket"),
		},
		Google: GoogleConfig{
			ClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := LoadEnvFor(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, err := strconv.Atoi(LoadEnvFor(key)); err == nil {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(LoadEnvFor(key)); err == nil {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(LoadEnvFor(key)); err == nil {
		return value
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := LoadEnvFor(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
