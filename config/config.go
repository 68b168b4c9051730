// Package config loads lendify settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Config holds the settings for one library desk.
type Config struct {
	LibraryName    string `env:"LENDIFY_LIBRARY_NAME" envDefault:"City Library"`
	LibraryAddress string `env:"LENDIFY_LIBRARY_ADDRESS" envDefault:"123 Main Street"`

	AdminID       string `env:"LENDIFY_ADMIN_ID" envDefault:"L001"`
	AdminName     string `env:"LENDIFY_ADMIN_NAME" envDefault:"Library Administrator"`
	AdminPassword string `env:"LENDIFY_ADMIN_PASSWORD" envDefault:"admin123"`

	EnforceLoanLimit bool `env:"LENDIFY_ENFORCE_LOAN_LIMIT" envDefault:"true"`

	Locale    string `env:"LENDIFY_LOCALE" envDefault:"en"`
	LogLevel  string `env:"LENDIFY_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LENDIFY_LOG_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the given dotenv files, skipping any that do not exist, then
// parses the environment. Variables already set win over file values.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Logger builds a slog logger writing to w in the configured level and format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q: want text or json", c.LogFormat)
	}
}

// Printer returns a message printer for the configured locale, falling back
// to English when the tag does not parse.
func (c Config) Printer() *message.Printer {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
