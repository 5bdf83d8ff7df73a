package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"htmlbox/pkg/config"
)

func TestConsoleLoggerColorsLevels(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	cfg := config.NewDefaultConfig().Logger
	cfg.Level = "debug"
	Initialize(cfg, zapcore.AddSync(&buf))

	GetLogger().Named("layout").Info("laid out", zap.Float64("height", 12.5))

	out := buf.String()
	assert.Contains(t, out, colorMap["green"]+"INFO"+colorReset)
	assert.Contains(t, out, "htmlbox.layout.")
	assert.Contains(t, out, "laid out")
	assert.Contains(t, out, `"height": 12.5`)
}

func TestJSONLoggerAndLevelFilter(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "svc"}, zapcore.AddSync(&buf))
	logger := GetLogger()
	logger.Info("dropped")
	logger.Warn("kept", zap.String("src", "a.png"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "a.png", entry["src"])
	assert.Equal(t, "svc", entry["logger"])
}

func TestFileSink(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	file := filepath.Join(t.TempDir(), "htmlbox.log")
	Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: file, MaxSize: 1}, zapcore.AddSync(&bytes.Buffer{}))
	GetLogger().Info("to file")
	Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))
	GetLogger().Info("once")

	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
}
