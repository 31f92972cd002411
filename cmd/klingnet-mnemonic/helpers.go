package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Klingon-tech/klingnet-mnemonic/config"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/log"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/mnemonic"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/storage"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/vault"
)

// globalFlags holds the flags accepted before the subcommand.
type globalFlags struct {
	dataDir    string
	configPath string
	checksum   string
	logLevel   string
	logJSON    bool
}

// parseGlobalFlags consumes leading global flags and returns the rest of
// args, starting at the subcommand.
func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var g globalFlags
	for len(args) > 0 {
		name, value, hasValue := strings.Cut(args[0], "=")

		var dst *string
		switch name {
		case "--datadir":
			dst = &g.dataDir
		case "--config":
			dst = &g.configPath
		case "--checksum":
			dst = &g.checksum
		case "--log-level":
			dst = &g.logLevel
		case "--log-json":
			if hasValue {
				return g, nil, fmt.Errorf("--log-json takes no value")
			}
			g.logJSON = true
			args = args[1:]
			continue
		default:
			return g, args, nil
		}

		switch {
		case hasValue:
			args = args[1:]
		case len(args) > 1:
			value = args[1]
			args = args[2:]
		default:
			return g, nil, fmt.Errorf("%s requires a value", name)
		}
		*dst = value
	}
	return g, args, nil
}

// loadConfig builds the effective config: defaults, then the config file,
// then global flags.
func loadConfig(g globalFlags) (*config.Config, error) {
	cfg := config.Default()
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}

	path := g.configPath
	if path == "" {
		path = cfg.ConfigFile()
	}
	values, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		return nil, err
	}

	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	if g.checksum != "" {
		cfg.Mnemonic.Checksum = g.checksum
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logJSON {
		cfg.Log.JSON = true
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newCodec returns the codec for the configured checksum. cfg must have
// passed config.Validate.
func newCodec(cfg *config.Config) *mnemonic.Codec {
	fn, err := mnemonic.ChecksumByName(cfg.Mnemonic.Checksum)
	if err != nil {
		panic(err)
	}
	return mnemonic.NewCodec(mnemonic.WithChecksum(fn))
}

// openVault opens the configured vault backend. The returned func closes
// the database.
func openVault(cfg *config.Config) (*vault.Vault, func(), error) {
	var db storage.DB
	switch cfg.Vault.Backend {
	case config.BackendMemory:
		log.CLI.Warn().Msg("Using in-memory vault, entries are lost on exit")
		db = storage.NewMemory()
	default:
		dir := cfg.VaultDir()
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, nil, fmt.Errorf("create vault dir: %w", err)
		}
		bdb, err := storage.NewBadger(dir)
		if err != nil {
			return nil, nil, err
		}
		db = bdb
	}

	v, err := vault.New(db, cfg.Mnemonic.Checksum, cfg.BackupParams())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.CLI.Error().Err(err).Msg("Close vault")
		}
	}
	return v, closeDB, nil
}

// joinWords accepts a mnemonic either as one quoted argument or as one
// argument per word.
func joinWords(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return strings.Join(args, mnemonic.Separator)
}

// parseEntropyHex decodes hex entropy, with or without a 0x prefix.
func parseEntropyHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex entropy: %w", err)
	}
	return b, nil
}

// suggestWord returns the dictionary word sharing the first four letters
// of word, which identify a BIP-39 English word uniquely.
func suggestWord(word string) string {
	if len(word) < 4 {
		return ""
	}
	prefix := strings.ToLower(word[:4])
	words := mnemonic.WordList()
	i := sort.SearchStrings(words, prefix)
	if i < len(words) && strings.HasPrefix(words[i], prefix) {
		return words[i]
	}
	return ""
}

// ── Password helpers ────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// promptPassword reads a password without echo. Tests replace it.
var promptPassword = readPassword

// readNewPassword prompts twice and fails on mismatch or an empty password.
func readNewPassword() ([]byte, error) {
	password, err := promptPassword("Enter password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		clear(password)
		return nil, fmt.Errorf("read password: %w", err)
	}
	defer clear(confirm)
	if string(password) != string(confirm) {
		clear(password)
		return nil, fmt.Errorf("passwords do not match")
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("password must not be empty")
	}
	return password, nil
}
