package config

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-mnemonic/internal/log"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/mnemonic"
)

// Validate checks the config for obvious operator mistakes. It normalizes
// the checksum and backend names in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}

	if _, err := mnemonic.EntropyLenForWords(cfg.Mnemonic.Words); err != nil {
		return fmt.Errorf("mnemonic.words must be 12, 15, 18, 21 or 24")
	}
	cfg.Mnemonic.Checksum = strings.ToLower(strings.TrimSpace(cfg.Mnemonic.Checksum))
	if _, err := mnemonic.ChecksumByName(cfg.Mnemonic.Checksum); err != nil {
		return fmt.Errorf("mnemonic.checksum: %w", err)
	}

	if cfg.Vault.Backend == "" {
		cfg.Vault.Backend = BackendBadger
	}
	cfg.Vault.Backend = VaultBackend(strings.ToLower(string(cfg.Vault.Backend)))
	switch cfg.Vault.Backend {
	case BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("vault.backend must be %q or %q", BackendBadger, BackendMemory)
	}

	if err := cfg.BackupParams().Validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, error or disabled")
	}
	return nil
}
