// Package config handles klingnet-mnemonic configuration.
//
// Settings come from built-in defaults, then the .conf file in the data
// directory, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Klingon-tech/klingnet-mnemonic/internal/backup"
)

// VaultBackend selects the database behind the mnemonic vault.
type VaultBackend string

const (
	BackendBadger VaultBackend = "badger" // Persistent, under VaultDir (default)
	BackendMemory VaultBackend = "memory" // Lost on exit, for testing
)

// Config holds runtime configuration for the mnemonic tool.
type Config struct {
	DataDir string `conf:"datadir"`

	// Mnemonic generation and parsing
	Mnemonic MnemonicConfig

	// Encrypted mnemonic store
	Vault VaultConfig

	// Backup files
	Backup BackupConfig

	// Logging
	Log LogConfig
}

// MnemonicConfig holds codec settings.
type MnemonicConfig struct {
	Words    int    `conf:"mnemonic.words"`    // Default word count for generate
	Checksum string `conf:"mnemonic.checksum"` // sha256 or blake3
}

// VaultConfig holds vault settings.
type VaultConfig struct {
	Backend VaultBackend `conf:"vault.backend"`
	Dir     string       `conf:"vault.dir"` // Overrides <datadir>/vault
}

// BackupConfig holds backup file settings. The Argon2 fields also apply to
// vault records.
type BackupConfig struct {
	Encrypt     bool   `conf:"backup.encrypt"`
	Memory      uint32 `conf:"backup.memory"` // KiB
	Iterations  uint32 `conf:"backup.iterations"`
	Parallelism uint8  `conf:"backup.parallelism"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-mnemonic
//	macOS:   ~/Library/Application Support/KlingnetMnemonic
//	Windows: %APPDATA%\KlingnetMnemonic
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-mnemonic"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetMnemonic")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetMnemonic")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetMnemonic")
	default:
		return filepath.Join(home, ".klingnet-mnemonic")
	}
}

// VaultDir returns the vault database directory.
func (c *Config) VaultDir() string {
	if c.Vault.Dir != "" {
		return c.Vault.Dir
	}
	return filepath.Join(c.DataDir, "vault")
}

// BackupParams returns the Argon2id parameters for sealed backups and
// vault records.
func (c *Config) BackupParams() backup.Params {
	return backup.Params{
		Memory:      c.Backup.Memory,
		Iterations:  c.Backup.Iterations,
		Parallelism: c.Backup.Parallelism,
	}
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "mnemonic.conf")
}
