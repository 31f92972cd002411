// Package vault keeps named, password-encrypted mnemonics in a key-value
// database.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/Klingon-tech/klingnet-mnemonic/internal/backup"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/log"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/mnemonic"
	"github.com/Klingon-tech/klingnet-mnemonic/internal/storage"
)

const recordVersion = 1

// Key layout.
var (
	prefixMnemonic = []byte("mnemonic/")
	prefixID       = []byte("id/")
)

var (
	ErrNotFound    = errors.New("mnemonic not found")
	ErrExists      = errors.New("mnemonic already exists")
	ErrInvalidName = errors.New("invalid mnemonic name")
	ErrEmpty       = errors.New("mnemonic has no words")
)

// record is the stored JSON form of a vault entry.
type record struct {
	ID               uuid.UUID `json:"id"`
	Version          int       `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	Words            int       `json:"words"`
	Checksum         string    `json:"checksum"`
	EncryptedEntropy []byte    `json:"encrypted_entropy"`
}

// Entry is the public metadata of a stored mnemonic.
type Entry struct {
	Name      string
	ID        uuid.UUID
	CreatedAt time.Time
	Words     int
	Checksum  string
}

// Vault stores mnemonics under unique names. Only the entropy is kept, sealed
// with the caller's password; words are rebuilt on Get.
type Vault struct {
	mu       sync.Mutex
	db       storage.DB
	checksum string
	codec    *mnemonic.Codec
	params   backup.Params
}

// New creates a vault over db. checksum names the algorithm new mnemonics
// are stored with (see mnemonic.ChecksumByName).
func New(db storage.DB, checksum string, params backup.Params) (*Vault, error) {
	fn, err := mnemonic.ChecksumByName(checksum)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("vault params: %w", err)
	}
	if checksum == "" {
		checksum = mnemonic.ChecksumSHA256
	}
	return &Vault{
		db:       db,
		checksum: strings.ToLower(strings.TrimSpace(checksum)),
		codec:    mnemonic.NewCodec(mnemonic.WithChecksum(fn)),
		params:   params,
	}, nil
}

// Codec returns the codec matching the vault's checksum algorithm.
func (v *Vault) Codec() *mnemonic.Codec {
	return v.codec
}

// Put seals m under password and stores it as name. It returns the ID
// assigned to the new entry.
func (v *Vault) Put(name string, m *mnemonic.Mnemonic, password []byte) (uuid.UUID, error) {
	if err := validateName(name); err != nil {
		return uuid.Nil, err
	}
	if m.Len() == 0 {
		return uuid.Nil, ErrEmpty
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	ok, err := v.db.Has(mnemonicKey(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("check %q: %w", name, err)
	}
	if ok {
		return uuid.Nil, fmt.Errorf("%q: %w", name, ErrExists)
	}

	entropy := m.Entropy()
	defer clear(entropy)

	// The caller's mnemonic must round-trip under the vault's checksum.
	if check, err := v.codec.FromEntropy(entropy); err != nil || !check.Equal(m) {
		return uuid.Nil, fmt.Errorf("mnemonic does not verify with %s checksum: %w", v.checksum, mnemonic.ErrChecksumMismatch)
	}

	sealed, err := backup.Seal(entropy, password, v.params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("seal entropy: %w", err)
	}

	rec := record{
		ID:               uuid.New(),
		Version:          recordVersion,
		CreatedAt:        time.Now().UTC(),
		Words:            m.Len(),
		Checksum:         v.checksum,
		EncryptedEntropy: sealed,
	}
	data, err := json.Marshal(&rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal record: %w", err)
	}

	err = v.write(func(put func(k, val []byte) error, _ func(k []byte) error) error {
		if err := put(mnemonicKey(name), data); err != nil {
			return err
		}
		return put(idKey(rec.ID), []byte(name))
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("store %q: %w", name, err)
	}

	log.Vault.Info().Str("name", name).Str("id", rec.ID.String()).Int("words", rec.Words).Msg("Mnemonic stored")
	return rec.ID, nil
}

// Get decrypts and returns the mnemonic stored as name.
func (v *Vault) Get(name string, password []byte) (*mnemonic.Mnemonic, error) {
	rec, err := v.readRecord(name)
	if err != nil {
		return nil, err
	}

	entropy, err := backup.Open(rec.EncryptedEntropy, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt %q: %w", name, err)
	}
	defer clear(entropy)

	fn, err := mnemonic.ChecksumByName(rec.Checksum)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", name, err)
	}
	m, err := mnemonic.NewCodec(mnemonic.WithChecksum(fn)).FromEntropy(entropy)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", name, err)
	}
	if m.Len() != rec.Words {
		return nil, fmt.Errorf("record %q: stored %d words, entropy gives %d", name, rec.Words, m.Len())
	}

	log.Vault.Debug().Str("name", name).Msg("Mnemonic loaded")
	return m, nil
}

// GetByID decrypts and returns the mnemonic with the given ID.
func (v *Vault) GetByID(id uuid.UUID, password []byte) (*mnemonic.Mnemonic, error) {
	name, err := v.db.Get(idKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("id %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("lookup id %s: %w", id, err)
	}
	return v.Get(string(name), password)
}

// Info returns the metadata of the mnemonic stored as name.
func (v *Vault) Info(name string) (Entry, error) {
	rec, err := v.readRecord(name)
	if err != nil {
		return Entry{}, err
	}
	return rec.entry(name), nil
}

// Has reports whether a mnemonic is stored as name.
func (v *Vault) Has(name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	return v.db.Has(mnemonicKey(name))
}

// List returns the metadata of every stored mnemonic, sorted by name.
func (v *Vault) List() ([]Entry, error) {
	var entries []Entry
	err := v.db.ForEach(prefixMnemonic, func(key, value []byte) error {
		name := string(key[len(prefixMnemonic):])
		rec, err := decodeRecord(value)
		if err != nil {
			return fmt.Errorf("record %q: %w", name, err)
		}
		entries = append(entries, rec.entry(name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

// Delete removes the mnemonic stored as name.
func (v *Vault) Delete(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	rec, err := v.readRecord(name)
	if err != nil {
		return err
	}
	err = v.write(func(_ func(k, val []byte) error, del func(k []byte) error) error {
		if err := del(mnemonicKey(name)); err != nil {
			return err
		}
		return del(idKey(rec.ID))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}

	log.Vault.Info().Str("name", name).Str("id", rec.ID.String()).Msg("Mnemonic deleted")
	return nil
}

func (v *Vault) readRecord(name string) (*record, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := v.db.Get(mnemonicKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", name, err)
	}
	return rec, nil
}

// write applies fn through a batch when the database supports one, so the
// name and id keys change together.
func (v *Vault) write(fn func(put func(k, val []byte) error, del func(k []byte) error) error) error {
	if b, ok := v.db.(storage.Batcher); ok {
		batch := b.NewBatch()
		defer batch.Discard()
		if err := fn(batch.Put, batch.Delete); err != nil {
			return err
		}
		return batch.Commit()
	}
	return fn(v.db.Put, v.db.Delete)
}

func decodeRecord(data []byte) (*record, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("unsupported record version: %d", rec.Version)
	}
	return &rec, nil
}

func (r *record) entry(name string) Entry {
	return Entry{
		Name:      name,
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Words:     r.Words,
		Checksum:  r.Checksum,
	}
}

// validateName accepts non-empty printable names without whitespace.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}

func mnemonicKey(name string) []byte {
	return append(append([]byte{}, prefixMnemonic...), name...)
}

func idKey(id uuid.UUID) []byte {
	return append(append([]byte{}, prefixID...), id.String()...)
}
