package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port              int
	LogLevel          string
	LogFormat         string
	ServiceName       string
	Version           string
	Environment       string
	DBPath            string // sqlite database file
	DeadLetterPath    string
	QuestTemplatePath string
	DeviceID          string
	ReconcileInterval time.Duration
	AutosaveInterval  time.Duration
	UndoWindow        time.Duration
}

// Load loads the configuration from environment variables.
// A .env file is honored when present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		ServiceName:       getEnv("SERVICE_NAME", "lifequest-engine"),
		Version:           getEnv("VERSION", "dev"),
		Environment:       getEnv("ENVIRONMENT", "dev"),
		DBPath:            getEnv("DB_PATH", "lifequest.db"),
		DeadLetterPath:    getEnv("DEAD_LETTER_PATH", "events.deadletter.jsonl"),
		QuestTemplatePath: getEnv("QUEST_TEMPLATE_PATH", "configs/quest_templates.json"),
		DeviceID:          getEnv("DEVICE_ID", "local"),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AutosaveInterval, err = getDuration("AUTOSAVE_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.UndoWindow, err = getDuration("UNDO_WINDOW", 20*time.Second)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}
