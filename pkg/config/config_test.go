package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "SERVER_WRITE_TIMEOUT", "UPLOAD_MAX_BYTES",
		"OCR_ATTEMPT_TIMEOUT", "OCR_MIN_WIDTH", "OCR_MIN_TEXT_LENGTH", "OCR_LANGUAGE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 90*time.Second, cfg.OCR.AttemptTimeout)
	assert.Equal(t, 2400, cfg.OCR.MinWidth)
	assert.Equal(t, 10, cfg.OCR.MinTextLength)
	assert.Equal(t, "eng", cfg.OCR.Language)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("OCR_ATTEMPT_TIMEOUT", "5")
	t.Setenv("OCR_MIN_WIDTH", "1200")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.OCR.AttemptTimeout)
	assert.Equal(t, 1200, cfg.OCR.MinWidth)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}
