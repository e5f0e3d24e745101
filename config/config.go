package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/purechat/purechat-server/filter"
	"github.com/purechat/purechat-server/moderation"
)

const (
	defaultListenAddr = ":8080"

	// The REST API uses the original web default, the bot is stricter.
	defaultServerThreshold = 0.5
	defaultBotThreshold    = 0.8
)

// Server holds the configuration for the REST process.
type Server struct {
	ListenAddr string

	HFAPIToken string
	HFBaseURL  string
	TextModel  string
	ImageModel string

	Threshold float64
	Mode      filter.Mode

	ArchiveBucket    string
	ArchiveRegion    string
	ArchiveEndpoint  string
	ArchiveAccessKey string
	ArchiveSecretKey string
}

// Bot holds the configuration for the Telegram moderation process.
type Bot struct {
	BotToken string

	HFAPIToken string
	HFBaseURL  string
	TextModel  string

	Threshold  float64
	MaxStrikes int

	// DatabaseURL selects the postgres strike store. When empty, strikes
	// live in memory, expiring after StrikeTTL if one is set.
	DatabaseURL string
	StrikeTTL   time.Duration
}

// LoadServer reads the REST configuration from the environment. A .env
// file is honored when present.
func LoadServer() (*Server, error) {
	_ = godotenv.Load()

	threshold, err := getFloat("PROFANITY_THRESHOLD", defaultServerThreshold)
	if err != nil {
		return nil, err
	}

	cfg := &Server{
		ListenAddr: getEnv("LISTEN_ADDR", defaultListenAddr),

		HFAPIToken: os.Getenv("HF_API_TOKEN"),
		HFBaseURL:  os.Getenv("HF_BASE_URL"),
		TextModel:  os.Getenv("TEXT_MODEL"),
		ImageModel: os.Getenv("IMAGE_MODEL"),

		Threshold: threshold,
		Mode:      filter.Mode(getEnv("CENSOR_MODE", string(filter.DefaultMode))),

		ArchiveBucket:    os.Getenv("ARCHIVE_BUCKET"),
		ArchiveRegion:    os.Getenv("ARCHIVE_REGION"),
		ArchiveEndpoint:  os.Getenv("ARCHIVE_ENDPOINT"),
		ArchiveAccessKey: os.Getenv("ARCHIVE_ACCESS_KEY"),
		ArchiveSecretKey: os.Getenv("ARCHIVE_SECRET_KEY"),
	}

	options := filter.Options{Threshold: cfg.Threshold, Mode: cfg.Mode}
	if err := options.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid filter configuration")
	}

	return cfg, nil
}

// LoadBot reads the bot configuration from the environment. A .env file
// is honored when present. TELEGRAM_BOT_TOKEN is required.
func LoadBot() (*Bot, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	threshold, err := getFloat("PROFANITY_THRESHOLD", defaultBotThreshold)
	if err != nil {
		return nil, err
	}

	maxStrikes, err := getInt("MAX_STRIKES", moderation.DefaultMaxStrikes)
	if err != nil {
		return nil, err
	}

	strikeTTL, err := getDuration("STRIKE_TTL", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Bot{
		BotToken: token,

		HFAPIToken: os.Getenv("HF_API_TOKEN"),
		HFBaseURL:  os.Getenv("HF_BASE_URL"),
		TextModel:  os.Getenv("TEXT_MODEL"),

		Threshold:  threshold,
		MaxStrikes: maxStrikes,

		DatabaseURL: os.Getenv("DATABASE_URL"),
		StrikeTTL:   strikeTTL,
	}

	options := filter.Options{Threshold: cfg.Threshold, Mode: filter.DefaultMode}
	if err := options.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid filter configuration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return parsed, nil
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return parsed, nil
}
