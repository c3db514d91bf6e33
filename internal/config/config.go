package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	JWT      JWTConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Env      string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type ServerConfig struct {
	Port string
	// BaseURL is the externally visible address embedded in invite links.
	BaseURL string
}

type JWTConfig struct {
	Secret     string
	Algorithm  string
	SessionTTL time.Duration
	InviteTTL  time.Duration
}

type RedisConfig struct {
	URL string
}

type SMTPConfig struct {
	SenderEmail    string
	SenderPassword string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using process environment")
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "multitasker"),
		},
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8080"),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Algorithm:  getEnv("JWT_ALGORITHM", "HS256"),
			SessionTTL: getEnvMinutes("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
			InviteTTL:  getEnvMinutes("INVITE_TOKEN_EXPIRE_MINUTES", 10),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		SMTP: SMTPConfig{
			SenderEmail:    getEnv("SENDER_EMAIL", ""),
			SenderPassword: getEnv("SENDER_EMAIL_PASSWORD", ""),
		},
		Env: getEnv("ENVIRONMENT", "development"),
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvMinutes(key string, defaultMinutes int) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return time.Duration(defaultMinutes) * time.Minute
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warnf("invalid %s=%q, using default of %d minutes", key, raw, defaultMinutes)
		return time.Duration(defaultMinutes) * time.Minute
	}
	return time.Duration(n) * time.Minute
}
