package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("test", &buf, WARN)

	l.Info("скрыто %d", 1)
	l.Warn("видно %d", 2)
	l.Error("ошибка")

	out := buf.String()
	assert.NotContains(t, out, "скрыто")
	assert.Contains(t, out, "[WARN] [test] видно 2")
	assert.Contains(t, out, "[ERROR] [test] ошибка")

	buf.Reset()
	l.SetLevels(OFF, OFF)
	l.Error("ничего")
	assert.Empty(t, buf.String())
}

func TestDefaultLoggerSwap(t *testing.T) {
	var buf bytes.Buffer
	prev := current()
	SetDefaultLogger(NewWriterLogger("game", &buf, DEBUG))
	defer SetDefaultLogger(prev)

	Debug("чанк %d,%d", 1, 2)
	Trace("не выводится")

	assert.Contains(t, buf.String(), "[DEBUG] [game] чанк 1,2")
	assert.NotContains(t, buf.String(), "не выводится")
}

func TestFileLogger(t *testing.T) {
	prevDir := logsDir
	logsDir = t.TempDir()
	defer func() { logsDir = prevDir }()

	l, err := NewLogger("storage")
	require.NoError(t, err)
	l.SetLevels(OFF, DEBUG)
	l.Debug("сохранено %d чанков", 3)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(logsDir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "сохранено 3 чанков"))
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestManagerRegister(t *testing.T) {
	var buf bytes.Buffer
	m := GetLoggerManager()
	m.Register(NewWriterLogger("unit", &buf, INFO))

	assert.Same(t, m.MustGetLogger("unit"), GetComponentLogger("unit"))
	assert.Contains(t, m.ListComponents(), "unit")
	require.NoError(t, m.SetLogLevel("unit", ERROR, OFF))
	assert.Error(t, m.SetLogLevel("missing", ERROR, OFF))
}
