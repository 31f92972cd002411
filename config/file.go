package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration values from a .conf file. A missing file
// yields no values.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file values to cfg.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value

	// Mnemonic
	case "mnemonic.words", "words":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Mnemonic.Words = n
	case "mnemonic.checksum", "checksum":
		cfg.Mnemonic.Checksum = value

	// Vault
	case "vault.backend":
		cfg.Vault.Backend = VaultBackend(value)
	case "vault.dir":
		cfg.Vault.Dir = value

	// Backup
	case "backup.encrypt":
		cfg.Backup.Encrypt = parseBool(value)
	case "backup.memory":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Backup.Memory = uint32(n)
	case "backup.iterations":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Backup.Iterations = uint32(n)
	case "backup.parallelism":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return err
		}
		cfg.Backup.Parallelism = uint8(n)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file. An existing file
// is left untouched.
func WriteDefaultConfig(path string) error {
	content := `# Klingnet Mnemonic Configuration

# Data directory (default: ~/.klingnet-mnemonic)
# datadir = ~/.klingnet-mnemonic

# ============================================================================
# Mnemonic
# ============================================================================

# Word count for generate: 12, 15, 18, 21 or 24
mnemonic.words = 24

# Checksum algorithm: sha256 (BIP-39) or blake3
# Mnemonics made with blake3 do not restore in other BIP-39 wallets.
mnemonic.checksum = sha256

# ============================================================================
# Vault
# ============================================================================

# Backend: badger or memory
vault.backend = badger
# vault.dir = ~/.klingnet-mnemonic/vault

# ============================================================================
# Backups
# ============================================================================

# Seal backup files with a password by default
backup.encrypt = false

# Argon2id cost (also used for vault records)
backup.memory = 65536
backup.iterations = 3
backup.parallelism = 4

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
