package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the notifier service.
type AppConfig struct {
	DatabaseURL    string
	TelegramToken  string
	MerchantID     string
	MerchantChatID int64
	RabbitMQURL    string // optional; empty disables confirmation dispatch
	HTTPAddr       string
	PollInterval   time.Duration
	AudioSink      string
	SoundEnabled   bool
	LogLevel       string
	Environment    string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.MerchantID = os.Getenv("MERCHANT_ID")
	if cfg.MerchantID == "" {
		return nil, fmt.Errorf("MERCHANT_ID is not set")
	}

	chatIDStr := os.Getenv("MERCHANT_CHAT_ID")
	if chatIDStr == "" {
		return nil, fmt.Errorf("MERCHANT_CHAT_ID is not set")
	}
	cfg.MerchantChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MERCHANT_CHAT_ID: %w", err)
	}

	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL") // optional

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	intervalStr := os.Getenv("POLL_INTERVAL")
	if intervalStr == "" {
		intervalStr = "3s"
	}
	cfg.PollInterval, err = time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	if cfg.PollInterval < time.Second {
		return nil, fmt.Errorf("POLL_INTERVAL must be at least 1s, got %s", cfg.PollInterval)
	}

	cfg.AudioSink = os.Getenv("AUDIO_SINK")
	if cfg.AudioSink == "" {
		cfg.AudioSink = "/dev/dsp"
	}

	soundStr := os.Getenv("SOUND_ENABLED")
	if soundStr == "" {
		cfg.SoundEnabled = true
	} else {
		cfg.SoundEnabled, err = strconv.ParseBool(soundStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SOUND_ENABLED: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}
