package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL      string
	ServerPort       int
	LogLevel         slog.Level
	CommandTimeout   time.Duration
	CORSAllowedHosts []string

	RankingWinPoints  int
	RankingLossPoints int

	Storage StorageConfig
}

type StorageConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	BucketName         string
	Endpoint           string
	PublicBaseURL      string
	ProfilePicturePath string
	PresignExpiry      time.Duration
	AllowedImageTypes  []string
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:5260",
	"http://localhost:4200",
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// LoadDatabaseURL resolves only the connection string. Used by commands that need no storage.
func LoadDatabaseURL() (string, error) {
	_ = godotenv.Load()
	return resolveDatabaseURL(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL, err := resolveDatabaseURL(getenv)
	if err != nil {
		return nil, err
	}

	port, err := intFromEnv(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if raw := getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}

	timeout, err := durationFromEnv(getenv, "DB_COMMAND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	winPoints, err := intFromEnv(getenv, "RANKING_WIN_POINTS", 1)
	if err != nil {
		return nil, err
	}
	lossPoints, err := intFromEnv(getenv, "RANKING_LOSS_POINTS", 1)
	if err != nil {
		return nil, err
	}
	if winPoints < 0 || lossPoints < 0 {
		return nil, fmt.Errorf("ranking points must not be negative (win=%d, loss=%d)", winPoints, lossPoints)
	}

	storageCfg, err := loadStorageConfig(getenv)
	if err != nil {
		return nil, err
	}

	origins := splitList(getenv("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}

	return &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		LogLevel:          level,
		CommandTimeout:    timeout,
		CORSAllowedHosts:  origins,
		RankingWinPoints:  winPoints,
		RankingLossPoints: lossPoints,
		Storage:           storageCfg,
	}, nil
}

// resolveDatabaseURL prefers DATABASE_URL and otherwise assembles a DSN from DB_* parts.
func resolveDatabaseURL(getenv func(string) string) (string, error) {
	if dbURL := getenv("DATABASE_URL"); dbURL != "" {
		return dbURL, nil
	}

	password := getenv("DB_PASSWORD")
	if password == "" {
		return "", fmt.Errorf("neither DATABASE_URL nor DB_PASSWORD environment variable is set")
	}

	host := valueOrDefault(getenv("DB_HOST"), "localhost")
	port := valueOrDefault(getenv("DB_PORT"), "5432")
	name := valueOrDefault(getenv("DB_NAME"), "pool-tournament-manager-db")
	user := valueOrDefault(getenv("DB_USER"), "postgres")
	sslMode := valueOrDefault(getenv("DB_SSLMODE"), "disable")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String(), nil
}

func loadStorageConfig(getenv func(string) string) (StorageConfig, error) {
	bucket := getenv("AWS_S3_BUCKET_NAME")
	if bucket == "" {
		return StorageConfig{}, fmt.Errorf("AWS_S3_BUCKET_NAME environment variable is not set")
	}

	expiryMinutes, err := intFromEnv(getenv, "AWS_S3_PRESIGN_EXPIRY_MINUTES", 15)
	if err != nil {
		return StorageConfig{}, err
	}
	if expiryMinutes <= 0 {
		return StorageConfig{}, fmt.Errorf("AWS_S3_PRESIGN_EXPIRY_MINUTES must be positive, got %d", expiryMinutes)
	}

	allowed := splitList(getenv("AWS_S3_ALLOWED_IMAGE_TYPES"))
	if len(allowed) == 0 {
		allowed = []string{"image/jpeg", "image/png"}
	}

	return StorageConfig{
		Region:             valueOrDefault(getenv("AWS_REGION"), "us-east-1"),
		AccessKeyID:        getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey:    getenv("AWS_SECRET_ACCESS_KEY"),
		BucketName:         bucket,
		Endpoint:           getenv("AWS_S3_ENDPOINT"),
		PublicBaseURL:      getenv("AWS_S3_PUBLIC_BASE_URL"),
		ProfilePicturePath: valueOrDefault(getenv("AWS_S3_PROFILE_PICTURE_PATH"), "players/%s/profile"),
		PresignExpiry:      time.Duration(expiryMinutes) * time.Minute,
		AllowedImageTypes:  allowed,
	}, nil
}

func intFromEnv(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func durationFromEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
