package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohmanhakim/site-parser/internal/logging"
)

func TestLoggerWritesToRing(t *testing.T) {
	logger, buffer, err := logging.NewLogger("DEBUG")
	require.NoError(t, err)

	logger.Info("crawl started", zap.String("start_url", "http://example.com/"))
	logger.Debug("fetch ok")

	entries := buffer.List(0, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Contains(t, entries[0].Message, "crawl started")
	assert.Contains(t, entries[0].Message, "start_url=http://example.com/")
	assert.Equal(t, "DEBUG", entries[1].Level)
	assert.Greater(t, entries[1].ID, entries[0].ID)
}

func TestLoggerRespectsLevel(t *testing.T) {
	logger, buffer, err := logging.NewLogger("WARNING")
	require.NoError(t, err)

	logger.Info("suppressed")
	logger.Warn("kept")

	entries := buffer.List(0, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARNING", entries[0].Level)
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	_, _, err := logging.NewLogger("LOUD")
	assert.Error(t, err)
}

func TestListPaginatesByID(t *testing.T) {
	logger, buffer, err := logging.NewLogger("INFO")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		logger.Info("entry")
	}

	first := buffer.List(0, 2)
	require.Len(t, first, 2)
	rest := buffer.List(first[1].ID, 100)
	require.Len(t, rest, 3)
	assert.Greater(t, rest[0].ID, first[1].ID)
}

func TestClear(t *testing.T) {
	logger, buffer, err := logging.NewLogger("INFO")
	require.NoError(t, err)

	logger.Info("before clear")
	buffer.Clear()
	assert.Empty(t, buffer.List(0, 10))

	// IDs keep growing across Clear.
	logger.Info("after clear")
	entries := buffer.List(0, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(2), entries[0].ID)
}

func TestSensitiveFieldsAreMasked(t *testing.T) {
	logger, buffer, err := logging.NewLogger("INFO")
	require.NoError(t, err)

	logger.Info("authenticating", zap.String("token", "supersecret123"))

	entries := buffer.List(0, 10)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "token=sup***23")
	assert.NotContains(t, entries[0].Message, "supersecret123")
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "***", logging.MaskValue("short"))
	assert.Equal(t, "sup***23", logging.MaskValue("supersecret123"))
}
