package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/strut/internal/config"
)

func setTemporaryHome(t *testing.T) string {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	return homeDirectory
}

func TestLoadMissingStoreIsEmpty(t *testing.T) {
	setTemporaryHome(t)

	patterns, loadError := config.LoadUserPatterns(t.TempDir())
	require.NoError(t, loadError)
	assert.Empty(t, patterns)
}

func TestSaveAndLoadRoundtripDeduplicates(t *testing.T) {
	homeDirectory := setTemporaryHome(t)

	storePath, saveError := config.SaveUserPatterns([]string{"*.log", "dist", "*.log"})
	require.NoError(t, saveError)
	assert.Equal(t, filepath.Join(homeDirectory, config.GlobalConfigDirectoryName, config.GlobalConfigFileName), storePath)

	patterns, loadError := config.LoadUserPatterns("")
	require.NoError(t, loadError)
	assert.Equal(t, []string{"*.log", "dist"}, patterns)
}

func TestAddKeepsExistingPatterns(t *testing.T) {
	setTemporaryHome(t)

	_, saveError := config.SaveUserPatterns([]string{"*.log"})
	require.NoError(t, saveError)

	_, addError := config.AddUserPatterns([]string{"dist", "*.log"})
	require.NoError(t, addError)

	patterns, loadError := config.LoadUserPatterns("")
	require.NoError(t, loadError)
	assert.Equal(t, []string{"*.log", "dist"}, patterns)
}

func TestClearEmptiesTheStore(t *testing.T) {
	setTemporaryHome(t)

	_, saveError := config.SaveUserPatterns([]string{"*.log"})
	require.NoError(t, saveError)

	_, clearError := config.ClearUserPatterns()
	require.NoError(t, clearError)

	patterns, loadError := config.LoadUserPatterns("")
	require.NoError(t, loadError)
	assert.Empty(t, patterns)
}

func TestLocalFileMergesAfterGlobalStore(t *testing.T) {
	setTemporaryHome(t)

	_, saveError := config.SaveUserPatterns([]string{"*.log", "shared"})
	require.NoError(t, saveError)

	workingDirectory := t.TempDir()
	localConfiguration := "ignore:\n  patterns:\n    - local*\n    - shared\n"
	require.NoError(t, os.WriteFile(filepath.Join(workingDirectory, config.LocalConfigFileName), []byte(localConfiguration), 0o644))

	patterns, loadError := config.LoadUserPatterns(workingDirectory)
	require.NoError(t, loadError)
	assert.Equal(t, []string{"*.log", "shared", "local*"}, patterns)
}
