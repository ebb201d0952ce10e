// Package settings holds the persisted backend connection settings.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings is the connection configuration for the generation backend.
// It is treated as an immutable snapshot: the client derives headers and
// URLs from it and replaces the whole value on change.
type Settings struct {
	// HTTPEndpoint is the base URL for HTTP calls, e.g. "http://127.0.0.1:8188"
	HTTPEndpoint string `json:"http_endpoint"`
	// WSEndpoint is the base URL for the websocket channel, e.g. "ws://127.0.0.1:8188"
	WSEndpoint string `json:"ws_endpoint"`
	// AuthID and AuthSecret are opaque credentials forwarded as headers
	AuthID     string `json:"auth_id,omitempty"`
	AuthSecret string `json:"auth_secret,omitempty"`
	// AuthEnabled controls whether the credentials are attached at all
	AuthEnabled bool `json:"auth_enabled"`
}

// Default returns settings pointing at a local backend on the stock port.
func Default() Settings {
	return Settings{
		HTTPEndpoint: "http://127.0.0.1:8188",
		WSEndpoint:   "ws://127.0.0.1:8188",
	}
}

// Equal reports whether two settings snapshots are identical.
func (s Settings) Equal(o Settings) bool {
	return s == o
}

// DefaultPath returns the settings file location in the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "craft", "settings.json"), nil
}

// Load reads settings from path. If the file does not exist it is created
// with defaults so there is always a file the user can edit.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s := Default()
		if err := Save(path, s); err != nil {
			return Settings{}, fmt.Errorf("failed to create default settings: %w", err)
		}
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path atomically. Before writing, the previous
// file (if any) is copied to path+".bak". Only one backup is kept.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+".bak", prev, 0o644); err != nil {
			return fmt.Errorf("failed to write settings backup: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return os.Rename(tmp, path)
}
