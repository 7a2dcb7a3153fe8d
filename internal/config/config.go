package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var defaultFeedURLs = []string{
	"https://raw.githubusercontent.com/EMFCOLLEGE/Texas-Election-API/refs/heads/main/DemCandidates2026.json",
	"https://raw.githubusercontent.com/EMFCOLLEGE/Texas-Election-API/refs/heads/main/RepCandidates2026.json",
}

var validate = validator.New()

type Config struct {
	DBPath    string
	OutputDir string

	Feeds            []Feed
	FeedTimeoutMs    int
	FeedRateLimitRPS int

	IncumbentsFile string
	ActiveState    string

	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// Feed describes one election-record source. PartyCodes maps the source's
// party code to Republican, Democrat or Other; Fields overrides the field
// names the normalizer looks for.
type Feed struct {
	Name       string              `yaml:"name" validate:"required"`
	URL        string              `yaml:"url" validate:"required,url"`
	PartyCodes map[string]string   `yaml:"partyCodes" validate:"omitempty,dive,keys,required,endkeys,oneof=Republican Democrat Other"`
	Fields     map[string][]string `yaml:"fields" validate:"omitempty,dive,keys,oneof=office county party name firstName lastName electionName email website photo,endkeys,min=1"`
}

type feedsFile struct {
	Feeds []Feed `yaml:"feeds" validate:"dive"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "index.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		FeedTimeoutMs:    getEnvInt("FEED_TIMEOUT_MS", 30000),
		FeedRateLimitRPS: getEnvInt("FEED_RATE_LIMIT_RPS", 5),

		IncumbentsFile: getEnv("INCUMBENTS_FILE", ""),
		ActiveState:    strings.ToUpper(getEnv("ACTIVE_STATE", "TX")),

		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if path := strings.TrimSpace(getEnv("FEEDS_FILE", "")); path != "" {
		feeds, err := LoadFeedsFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Feeds = feeds
	} else {
		cfg.Feeds = FeedsFromURLs(getEnvList("FEED_URLS", defaultFeedURLs))
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// FeedsFromURLs builds feeds with the default party convention and field names.
func FeedsFromURLs(urls []string) []Feed {
	out := make([]Feed, 0, len(urls))
	for i, u := range urls {
		out = append(out, Feed{Name: fmt.Sprintf("feed-%d", i+1), URL: u})
	}
	return out
}

func LoadFeedsFile(path string) ([]Feed, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}
	var file feedsFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return nil, fmt.Errorf("parse feeds file %s: %w", path, err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid feeds file %s: %w", path, err)
	}
	return file.Feeds, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
