package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/slotbook/internal/keyring"
)

// Open picks a Provider for config without touching storage:
// "keyring[:profile]" or a postgres:// URL selects PostgreSQL, a directory (existing, or
// written with a trailing slash) selects the JSON store, anything else is a
// SQLite file.
func Open(config string) (Provider, error) {
	if profile, ok := keyring.ParseConfig(config); ok {
		connStr, err := profile.Get()
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(connStr), nil
	}

	if IsPostgresConnString(config) {
		if _, err := ValidateConnString(config); err != nil {
			return nil, err
		}
		return NewPostgresStore(config), nil
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(config, "/") || strings.HasSuffix(config, string(os.PathSeparator)) {
		return NewJSONStore(path), nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return NewJSONStore(path), nil
	}
	return NewSQLiteStore(path), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigDir returns the directory logs are written under for config.
func ConfigDir(config string) (string, error) {
	if _, ok := keyring.ParseConfig(config); ok || IsPostgresConnString(config) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, ".config", "slotbook"), nil
	}
	path, err := ExpandPath(config)
	if err != nil {
		return "", err
	}
	if strings.HasSuffix(config, "/") {
		return path, nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path, nil
	}
	return filepath.Dir(path), nil
}
