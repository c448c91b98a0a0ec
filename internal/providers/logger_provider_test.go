package providers

import (
	"os"
	"path/filepath"
	"testing"
	"translit/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogTypeByRequestType_GET(t *testing.T) {
	assert.Equal(t, TypeQuery, GetLogTypeByRequestType("GET"))
	assert.Equal(t, TypeQuery, GetLogTypeByRequestType("HEAD"))
}

func TestGetLogTypeByRequestType_Writes(t *testing.T) {
	assert.Equal(t, TypeMutation, GetLogTypeByRequestType("DELETE"))
	assert.Equal(t, TypeMutation, GetLogTypeByRequestType("POST"))
	assert.Equal(t, TypeMutation, GetLogTypeByRequestType("PATCH"))
}

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "app", TypeApp.String())
	assert.Equal(t, "query", TypeQuery.String())
	assert.Equal(t, "mutation", TypeMutation.String())
	assert.Equal(t, "ui", TypeUI.String())
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "debug",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)

	logger.Infof(TypeApp, "test message")
	logger.Debugf(TypeQuery, "get message")
	logger.Warnf(TypeMutation, "delete message")
	logger.Errorf(TypeUI, "clipboard message")
	logger.Close()

	for _, name := range []string{"app.log", "query.log", "mutation.log", "ui.log"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "mutation.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "delete message")
	assert.Contains(t, string(data), `"type":"mutation"`)
}

func TestNewLogProvider_LevelFilters(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "warn", Mode: 0644, Dir: dir},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	logger.Infof(TypeApp, "hidden")
	logger.Warnf(TypeApp, "shown")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "verbose", Mode: 0644, Dir: t.TempDir()},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
