package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("should load the compiled defaults", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		provider, err := NewConfig()
		require.NoError(t, err)

		var command string
		require.NoError(t, provider.Get("langserver.command").Populate(&command))
		assert.Equal(t, "pyright-langserver", command)

		var timeout int
		require.NoError(t, provider.Get("langserver.requestTimeoutSeconds").Populate(&timeout))
		assert.Equal(t, 30, timeout)
	})

	t.Run("should expand the workspace root from the environment", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		t.Setenv("REFACTOR_WORKSPACE", "/workspace/project")
		provider, err := NewConfig()
		require.NoError(t, err)

		var root string
		require.NoError(t, provider.Get("workspace.root").Populate(&root))
		assert.Equal(t, "/workspace/project", root)
	})

	t.Run("should merge an override file over the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "override.yaml")
		require.NoError(t, os.WriteFile(path, []byte("langserver:\n  command: gopls\n"), 0644))
		t.Setenv(ConfigEnvVar, path)

		provider, err := NewConfig()
		require.NoError(t, err)

		var command string
		require.NoError(t, provider.Get("langserver.command").Populate(&command))
		assert.Equal(t, "gopls", command)

		// Untouched keys keep their defaults.
		var queueSize int
		require.NoError(t, provider.Get("langserver.notificationQueueSize").Populate(&queueSize))
		assert.Equal(t, 64, queueSize)
	})

	t.Run("should fail on a missing override file", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := NewConfig()
		assert.Error(t, err)
	})
}

func TestNewSugaredLogger(t *testing.T) {
	t.Run("should build a logger from the default config", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		provider, err := NewConfig()
		require.NoError(t, err)

		logger, err := NewSugaredLogger(provider)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.NotNil(t, NewLogger(logger))
	})

	t.Run("should reject an unknown level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "override.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: shouting\n"), 0644))
		t.Setenv(ConfigEnvVar, path)

		provider, err := NewConfig()
		require.NoError(t, err)
		_, err = NewSugaredLogger(provider)
		assert.Error(t, err)
	})
}
