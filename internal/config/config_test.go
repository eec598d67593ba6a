package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("CFEWATCH_STATE_FILE", "")
	t.Setenv("CFEWATCH_CODES", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.TelegramToken)
	assert.Equal(t, "42", cfg.TelegramChatID)
	assert.Equal(t, "state.json", cfg.StateFile)
	assert.Equal(t, []string{"CFE-0201", "CFE-0604"}, cfg.Codes)
	assert.False(t, cfg.Headful)
}

func TestFromEnvMissingTelegramCreds(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	_, err = FromEnv()
	require.Error(t, err)
}

func TestFromEnvCustomCodes(t *testing.T) {
	setRequired(t)
	t.Setenv("CFEWATCH_CODES", " CFE-0100 ,CFE-0200,, ")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"CFE-0100", "CFE-0200"}, cfg.Codes)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CFEWATCH_STATE_FILE", "/var/lib/cfewatch/state.json")
	t.Setenv("CFEWATCH_HEADFUL", "1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/cfewatch/state.json", cfg.StateFile)
	assert.True(t, cfg.Headful)
}
