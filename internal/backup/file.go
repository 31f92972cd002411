// Package backup persists mnemonics as text files, optionally sealed with a
// password.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-mnemonic/internal/log"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/mnemonic"
)

var (
	ErrPathReserved = errors.New("backup path exists and is not a regular file")
	ErrNotFound     = errors.New("backup file does not exist")
	ErrNotSealed    = errors.New("backup file is not sealed")
)

// sealedMagic prefixes password-protected backup files.
var sealedMagic = []byte("KMNB\x01")

// Parser turns mnemonic text back into a validated mnemonic.
// *mnemonic.Codec satisfies it.
type Parser interface {
	Parse(s string) (*mnemonic.Mnemonic, error)
}

// Write stores the mnemonic text at path, replacing any existing file.
// The file holds the words joined by single spaces and nothing else.
func Write(m *mnemonic.Mnemonic, path string) error {
	return writeFile(path, []byte(m.String()))
}

// Read loads and validates a mnemonic written by Write. A single trailing
// newline, as added by most editors, is ignored.
func Read(path string, p Parser) (*mnemonic.Mnemonic, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, sealedMagic) {
		return nil, fmt.Errorf("%s: backup is sealed, a password is required", path)
	}
	return parse(p, string(data), path)
}

// WriteSealed stores the mnemonic text at path, encrypted under password.
func WriteSealed(m *mnemonic.Mnemonic, path string, password []byte, params Params) error {
	text := []byte(m.String())
	defer clear(text)

	sealed, err := Seal(text, password, params)
	if err != nil {
		return fmt.Errorf("seal backup: %w", err)
	}
	return writeFile(path, append(append([]byte{}, sealedMagic...), sealed...))
}

// ReadSealed loads and validates a mnemonic written by WriteSealed.
func ReadSealed(path string, password []byte, p Parser) (*mnemonic.Mnemonic, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, sealedMagic) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotSealed)
	}

	text, err := Open(data[len(sealedMagic):], password)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer clear(text)
	return parse(p, string(text), path)
}

// IsSealed reports whether the backup at path is password protected.
func IsSealed(path string) (bool, error) {
	data, err := readFile(path)
	if err != nil {
		return false, err
	}
	return bytes.HasPrefix(data, sealedMagic), nil
}

func parse(p Parser, text, path string) (*mnemonic.Mnemonic, error) {
	if t, ok := strings.CutSuffix(text, "\n"); ok {
		text = strings.TrimSuffix(t, "\r")
	}
	m, err := p.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse backup %s: %w", path, err)
	}
	log.Backup.Debug().Str("path", path).Int("words", m.Len()).Msg("Backup loaded")
	return m, nil
}

func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err == nil && !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrPathReserved)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	log.Backup.Debug().Str("path", path).Msg("Backup written")
	return nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	return data, nil
}
