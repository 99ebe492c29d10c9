// Package config persists and loads the user's saved ignore patterns.
// Patterns live in a global yaml file merged with an optional per-project
// file; saves are serialized with a file lock and an atomic rename so two
// invocations cannot corrupt the store.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDirectoryName is the directory under the user's home that
	// holds the global pattern store.
	GlobalConfigDirectoryName = ".config/strut"
	// GlobalConfigFileName is the global pattern store file name.
	GlobalConfigFileName = "config.yaml"
	// LocalConfigFileName is the per-project pattern store file name.
	LocalConfigFileName = ".strut.yaml"

	lockFileSuffix = ".lock"

	errorResolveHomeFormat   = "resolving home directory: %w"
	errorStatConfigFormat    = "inspecting configuration %s: %w"
	errorReadConfigFormat    = "reading configuration from %s: %w"
	errorDecodeConfigFormat  = "decoding configuration from %s: %w"
	errorEncodeConfigFormat  = "encoding configuration for %s: %w"
	errorLockConfigFormat    = "locking configuration %s: %w"
	errorCreateConfigFormat  = "creating configuration directory %s: %w"
	errorWriteConfigFormat   = "writing configuration to %s: %w"
	errorReplaceConfigFormat = "replacing configuration %s: %w"
)

// StoredConfiguration is the persisted configuration document.
type StoredConfiguration struct {
	Ignore IgnoreConfiguration `mapstructure:"ignore" yaml:"ignore"`
}

// IgnoreConfiguration holds the ordered user glob patterns.
type IgnoreConfiguration struct {
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
}

// GlobalConfigPath returns the location of the global pattern store.
func GlobalConfigPath() (string, error) {
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", fmt.Errorf(errorResolveHomeFormat, homeError)
	}
	return filepath.Join(homeDirectory, GlobalConfigDirectoryName, GlobalConfigFileName), nil
}

// LoadUserPatterns returns the saved glob patterns: global store first, then
// the working directory's local file, duplicates removed in first-seen order.
// A missing store is an empty store, not an error.
func LoadUserPatterns(workingDirectory string) ([]string, error) {
	var mergedPatterns []string

	globalPath, globalPathError := GlobalConfigPath()
	if globalPathError == nil {
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return nil, loadError
		}
		mergedPatterns = append(mergedPatterns, globalConfiguration.Ignore.Patterns...)
	}

	if workingDirectory != "" {
		localConfiguration, loadError := loadConfigurationFromPath(filepath.Join(workingDirectory, LocalConfigFileName))
		if loadError != nil {
			return nil, loadError
		}
		mergedPatterns = append(mergedPatterns, localConfiguration.Ignore.Patterns...)
	}

	return deduplicatePatterns(mergedPatterns), nil
}

// SaveUserPatterns replaces the global pattern store contents.
func SaveUserPatterns(patterns []string) (string, error) {
	globalPath, globalPathError := GlobalConfigPath()
	if globalPathError != nil {
		return "", globalPathError
	}
	return globalPath, writeConfigurationToPath(globalPath, StoredConfiguration{
		Ignore: IgnoreConfiguration{Patterns: deduplicatePatterns(patterns)},
	})
}

// AddUserPatterns appends patterns to the global store, keeping existing ones.
func AddUserPatterns(patterns []string) (string, error) {
	globalPath, globalPathError := GlobalConfigPath()
	if globalPathError != nil {
		return "", globalPathError
	}
	existingConfiguration, loadError := loadConfigurationFromPath(globalPath)
	if loadError != nil {
		return "", loadError
	}
	combinedPatterns := append(existingConfiguration.Ignore.Patterns, patterns...)
	return globalPath, writeConfigurationToPath(globalPath, StoredConfiguration{
		Ignore: IgnoreConfiguration{Patterns: deduplicatePatterns(combinedPatterns)},
	})
}

// ClearUserPatterns empties the global pattern store.
func ClearUserPatterns() (string, error) {
	return SaveUserPatterns(nil)
}

// loadConfigurationFromPath reads one configuration file. A missing file
// yields the zero configuration.
func loadConfigurationFromPath(configurationPath string) (StoredConfiguration, error) {
	fileInfo, statError := os.Stat(configurationPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return StoredConfiguration{}, nil
		}
		return StoredConfiguration{}, fmt.Errorf(errorStatConfigFormat, configurationPath, statError)
	}
	if fileInfo.IsDir() {
		return StoredConfiguration{}, fmt.Errorf(errorStatConfigFormat, configurationPath, os.ErrInvalid)
	}

	reader := viper.New()
	reader.SetConfigFile(configurationPath)
	if readError := reader.ReadInConfig(); readError != nil {
		return StoredConfiguration{}, fmt.Errorf(errorReadConfigFormat, configurationPath, readError)
	}
	var configuration StoredConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return StoredConfiguration{}, fmt.Errorf(errorDecodeConfigFormat, configurationPath, decodeError)
	}
	return configuration, nil
}

// writeConfigurationToPath serializes the configuration under a file lock and
// replaces the target atomically via a same-directory temp file rename.
func writeConfigurationToPath(configurationPath string, configuration StoredConfiguration) error {
	configurationDirectory := filepath.Dir(configurationPath)
	if mkdirError := os.MkdirAll(configurationDirectory, 0o755); mkdirError != nil {
		return fmt.Errorf(errorCreateConfigFormat, configurationDirectory, mkdirError)
	}

	fileLock := flock.New(configurationPath + lockFileSuffix)
	if lockError := fileLock.Lock(); lockError != nil {
		return fmt.Errorf(errorLockConfigFormat, configurationPath, lockError)
	}
	defer func() {
		_ = fileLock.Unlock()
	}()

	encodedConfiguration, encodeError := yaml.Marshal(configuration)
	if encodeError != nil {
		return fmt.Errorf(errorEncodeConfigFormat, configurationPath, encodeError)
	}

	temporaryFile, createError := os.CreateTemp(configurationDirectory, ".tmp-*")
	if createError != nil {
		return fmt.Errorf(errorWriteConfigFormat, configurationPath, createError)
	}
	temporaryPath := temporaryFile.Name()
	if _, writeError := temporaryFile.Write(encodedConfiguration); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(errorWriteConfigFormat, configurationPath, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(errorWriteConfigFormat, configurationPath, closeError)
	}
	if renameError := os.Rename(temporaryPath, configurationPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(errorReplaceConfigFormat, configurationPath, renameError)
	}
	return nil
}

// deduplicatePatterns removes duplicate patterns while preserving order.
// The first occurrence of each unique pattern is kept.
func deduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}
