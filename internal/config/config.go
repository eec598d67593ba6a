/*
Package config resolves the monitor's configuration from the environment,
once, at startup.
*/
package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	defaultStateFile = "state.json"
)

var defaultCodes = []string{"CFE-0201", "CFE-0604"}

// Config is resolved once in main and passed by value from there on; nothing
// reads the environment after startup.
type Config struct {
	TelegramToken  string
	TelegramChatID string
	StateFile      string
	Codes          []string
	GeminiAPIKey   string
	GeminiModel    string
	Headful        bool
}

// FromEnv resolves configuration from the environment. Missing Telegram
// credentials are fatal here, before any browser or network activity starts.
func FromEnv() (Config, error) {
	cfg := Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
		StateFile:      os.Getenv("CFEWATCH_STATE_FILE"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		Headful:        os.Getenv("CFEWATCH_HEADFUL") != "",
	}

	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		return Config{}, fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set")
	}

	if cfg.StateFile == "" {
		cfg.StateFile = defaultStateFile
	}
	cfg.Codes = parseCodes(os.Getenv("CFEWATCH_CODES"))

	return cfg, nil
}

// parseCodes splits a comma-separated code list, falling back to the built-in
// tracked codes when unset or blank.
func parseCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	if len(codes) == 0 {
		return append([]string(nil), defaultCodes...)
	}
	return codes
}
