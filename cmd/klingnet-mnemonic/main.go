// klingnet-mnemonic converts between entropy and BIP-39 mnemonics and keeps
// mnemonics in backup files or an encrypted vault.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/Klingon-tech/klingnet-mnemonic/config"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/backup"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/log"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/mnemonic"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/vault"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	globals, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(globals)
	if err != nil {
		fatal("load config: %v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logger: %v", err)
	}
	log.CLI.Debug().Str("datadir", cfg.DataDir).Str("checksum", cfg.Mnemonic.Checksum).Msg("Config loaded")

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "generate":
		cmdGenerate(cfg, cmdArgs)
	case "encode":
		cmdEncode(cfg, cmdArgs)
	case "decode":
		cmdDecode(cfg, cmdArgs)
	case "validate":
		cmdValidate(cfg, cmdArgs)
	case "backup":
		cmdBackup(cfg, cmdArgs)
	case "vault":
		cmdVault(cfg, cmdArgs)
	case "config":
		cmdConfig(cfg, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: klingnet-mnemonic [global flags] <command> [flags]

Global flags:
  --datadir <path>    Data directory (default: ~/.klingnet-mnemonic)
  --config <file>     Config file (default: <datadir>/mnemonic.conf)
  --checksum <alg>    sha256 (BIP-39, default) or blake3
  --log-level <lvl>   debug, info, warn, error or disabled
  --log-json          Log as JSON

Commands:
  generate [--words <n>]          Generate a new mnemonic (12-24 words)
  encode <hex>                    Mnemonic for hex entropy (16-32 bytes)
  decode <words...>               Entropy (hex) of a mnemonic
  validate <words...>             Check a mnemonic's words and checksum

  backup write --file <f> --mnemonic "..." [--encrypt]
                                  Write a mnemonic backup file
  backup read --file <f> [--encrypted]
                                  Read and verify a backup file

  vault put --name <n> [--mnemonic "..."]
                                  Store a mnemonic (generates one if omitted)
  vault get --name <n> | --id <uuid>
                                  Decrypt and print a stored mnemonic
  vault list                      List stored mnemonics
  vault delete --name <n>         Remove a stored mnemonic

  config init                     Write a default config file
`)
}

// ── Codec commands ──────────────────────────────────────────────────────

func cmdGenerate(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	words := fs.Int("words", cfg.Mnemonic.Words, "Word count (12, 15, 18, 21 or 24)")
	fs.Parse(args)

	m, err := newCodec(cfg).Generate(*words)
	if err != nil {
		fatal("generate: %v", err)
	}
	fmt.Println(m.String())
}

func cmdEncode(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fatal("Usage: klingnet-mnemonic encode <hex>")
	}
	entropy, err := parseEntropyHex(args[0])
	if err != nil {
		fatal("%v", err)
	}
	m, err := newCodec(cfg).FromEntropy(entropy)
	if err != nil {
		fatal("encode: %v", err)
	}
	fmt.Println(m.String())
}

func cmdDecode(cfg *config.Config, args []string) {
	if len(args) == 0 {
		fatal("Usage: klingnet-mnemonic decode <words...>")
	}
	entropy, err := newCodec(cfg).EntropyFromMnemonic(joinWords(args))
	if err != nil {
		fatal("decode: %v", err)
	}
	fmt.Println(hex.EncodeToString(entropy))
}

func cmdValidate(cfg *config.Config, args []string) {
	if len(args) == 0 {
		fatal("Usage: klingnet-mnemonic validate <words...>")
	}
	m, err := newCodec(cfg).Parse(joinWords(args))
	if err != nil {
		var uw *mnemonic.UnknownWordError
		if errors.As(err, &uw) {
			if hint := suggestWord(uw.Word); hint != "" {
				fatal("invalid: %v (did you mean %q?)", err, hint)
			}
		}
		fatal("invalid: %v", err)
	}
	fmt.Printf("Valid %d-word mnemonic (%s checksum)\n", m.Len(), cfg.Mnemonic.Checksum)
}

// ── Backup ──────────────────────────────────────────────────────────────

func cmdBackup(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: klingnet-mnemonic backup <write|read> [flags]")
	}

	switch args[0] {
	case "write":
		cmdBackupWrite(cfg, args[1:])
	case "read":
		cmdBackupRead(cfg, args[1:])
	default:
		fatal("Unknown backup command: %s\nUsage: klingnet-mnemonic backup <write|read> [flags]", args[0])
	}
}

func cmdBackupWrite(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("backup write", flag.ExitOnError)
	file := fs.String("file", "", "Backup file path")
	phrase := fs.String("mnemonic", "", "Mnemonic to back up")
	encrypt := fs.Bool("encrypt", cfg.Backup.Encrypt, "Seal the backup with a password")
	fs.Parse(args)

	if *file == "" || *phrase == "" {
		fatal("Usage: klingnet-mnemonic backup write --file <f> --mnemonic \"...\" [--encrypt]")
	}

	m, err := newCodec(cfg).Parse(*phrase)
	if err != nil {
		fatal("invalid mnemonic: %v", err)
	}

	if *encrypt {
		password, err := readNewPassword()
		if err != nil {
			fatal("%v", err)
		}
		defer clear(password)
		if err := backup.WriteSealed(m, *file, password, cfg.BackupParams()); err != nil {
			fatal("write backup: %v", err)
		}
		fmt.Printf("Sealed backup written: %s\n", *file)
		return
	}

	if err := backup.Write(m, *file); err != nil {
		fatal("write backup: %v", err)
	}
	fmt.Printf("Backup written: %s\n", *file)
}

func cmdBackupRead(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("backup read", flag.ExitOnError)
	file := fs.String("file", "", "Backup file path")
	encrypted := fs.Bool("encrypted", false, "Expect a sealed backup")
	fs.Parse(args)

	if *file == "" {
		fatal("Usage: klingnet-mnemonic backup read --file <f> [--encrypted]")
	}

	sealed, err := backup.IsSealed(*file)
	if err != nil {
		fatal("read backup: %v", err)
	}

	codec := newCodec(cfg)
	var m *mnemonic.Mnemonic
	if sealed || *encrypted {
		password, err := promptPassword("Enter password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		defer clear(password)
		m, err = backup.ReadSealed(*file, password, codec)
		if err != nil {
			fatal("read backup: %v", err)
		}
	} else {
		m, err = backup.Read(*file, codec)
		if err != nil {
			fatal("read backup: %v", err)
		}
	}
	fmt.Println(m.String())
}

// ── Vault ───────────────────────────────────────────────────────────────

const vaultUsage = "Usage: klingnet-mnemonic vault <put|get|list|delete> [flags]"

func cmdVault(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal(vaultUsage)
	}
	err := withVault(cfg, func(v *vault.Vault) error {
		return runVault(v, args, os.Stdout)
	})
	if err != nil {
		fatal("%v", err)
	}
}

// withVault opens the configured vault, runs fn and closes the database
// whatever fn returns.
func withVault(cfg *config.Config, fn func(*vault.Vault) error) error {
	v, closeDB, err := openVault(cfg)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	defer closeDB()
	return fn(v)
}

// runVault dispatches a vault subcommand, writing results to out.
func runVault(v *vault.Vault, args []string, out io.Writer) error {
	switch args[0] {
	case "put":
		return vaultPut(v, args[1:], out)
	case "get":
		return vaultGet(v, args[1:], out)
	case "list":
		return vaultList(v, out)
	case "delete":
		return vaultDelete(v, args[1:], out)
	default:
		return fmt.Errorf("unknown vault command: %s\n%s", args[0], vaultUsage)
	}
}

func vaultPut(v *vault.Vault, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("vault put", flag.ContinueOnError)
	name := fs.String("name", "", "Entry name")
	phrase := fs.String("mnemonic", "", "Mnemonic to store (generated when empty)")
	words := fs.Int("words", 24, "Word count when generating")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("Usage: klingnet-mnemonic vault put --name <n> [--mnemonic \"...\"]")
	}

	var (
		m   *mnemonic.Mnemonic
		err error
	)
	if *phrase == "" {
		m, err = v.Codec().Generate(*words)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		fmt.Fprintln(out, "Mnemonic (write this down!):")
		fmt.Fprintf(out, "  %s\n\n", m.String())
	} else {
		m, err = v.Codec().Parse(*phrase)
		if err != nil {
			return fmt.Errorf("invalid mnemonic: %w", err)
		}
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	id, err := v.Put(*name, m, password)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	fmt.Fprintf(out, "Stored: %s\n", *name)
	fmt.Fprintf(out, "ID: %s\n", id)
	return nil
}

func vaultGet(v *vault.Vault, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("vault get", flag.ContinueOnError)
	name := fs.String("name", "", "Entry name")
	idStr := fs.String("id", "", "Entry ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if (*name == "") == (*idStr == "") {
		return fmt.Errorf("Usage: klingnet-mnemonic vault get --name <n> | --id <uuid>")
	}

	var id uuid.UUID
	if *idStr != "" {
		var err error
		if id, err = uuid.Parse(*idStr); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
	}

	password, err := promptPassword("Enter password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer clear(password)

	var m *mnemonic.Mnemonic
	if *idStr != "" {
		m, err = v.GetByID(id, password)
	} else {
		m, err = v.Get(*name, password)
	}
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	fmt.Fprintln(out, m.String())
	return nil
}

func vaultList(v *vault.Vault, out io.Writer) error {
	entries, err := v.List()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No mnemonics stored.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tWORDS\tCHECKSUM\tCREATED\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			e.Name, e.Words, e.Checksum, e.CreatedAt.Format("2006-01-02 15:04"), e.ID)
	}
	return tw.Flush()
}

func vaultDelete(v *vault.Vault, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("vault delete", flag.ContinueOnError)
	name := fs.String("name", "", "Entry name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("Usage: klingnet-mnemonic vault delete --name <n>")
	}
	if err := v.Delete(*name); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	fmt.Fprintf(out, "Deleted: %s\n", *name)
	return nil
}

// ── Config ──────────────────────────────────────────────────────────────

func cmdConfig(cfg *config.Config, args []string) {
	if len(args) < 1 || args[0] != "init" {
		fatal("Usage: klingnet-mnemonic config init")
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		fatal("create datadir: %v", err)
	}
	path := cfg.ConfigFile()
	if err := config.WriteDefaultConfig(path); err != nil {
		fatal("write config: %v", err)
	}
	fmt.Printf("Config: %s\n", path)
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
