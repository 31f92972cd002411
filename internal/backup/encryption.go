package backup

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Klingon-tech/klingnet-mnemonic/internal/log"
)

// Encryption constants.
const (
	SaltSize = 32
	// Sealed format: [salt(32)][memory(4)][iterations(4)][parallelism(1)][nonce(24)][ciphertext...]
	headerSize = SaltSize + 4 + 4 + 1
)

// Upper bounds on Argon2id cost. Open rejects headers outside them before
// deriving a key.
const (
	MaxMemory      = 4 * 1024 * 1024 // KiB (4 GiB)
	MaxIterations  = 64
	MaxParallelism = 64
)

var (
	ErrSealedTooShort   = errors.New("sealed data too short")
	ErrBadPassword      = errors.New("wrong password or corrupted data")
	ErrParamsOutOfRange = errors.New("argon2 parameters out of range")
)

// Params holds Argon2id parameters.
type Params struct {
	Memory      uint32 // in KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns recommended Argon2id parameters.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
	}
}

// Validate rejects parameters Argon2id cannot run with or that exceed the
// Max* bounds.
func (p Params) Validate() error {
	if p.Iterations == 0 || p.Iterations > MaxIterations {
		return fmt.Errorf("%w: iterations %d, want 1..%d", ErrParamsOutOfRange, p.Iterations, MaxIterations)
	}
	if p.Parallelism == 0 || p.Parallelism > MaxParallelism {
		return fmt.Errorf("%w: parallelism %d, want 1..%d", ErrParamsOutOfRange, p.Parallelism, MaxParallelism)
	}
	if p.Memory < 8*uint32(p.Parallelism) || p.Memory > MaxMemory {
		return fmt.Errorf("%w: memory %d KiB, want %d..%d", ErrParamsOutOfRange, p.Memory, 8*uint32(p.Parallelism), MaxMemory)
	}
	return nil
}

// deriveKey stretches password and salt into a XChaCha20-Poly1305 key.
func deriveKey(password, salt []byte, p Params) []byte {
	defer log.Benchmark("argon2id")()
	return argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

// Seal encrypts plaintext under password with Argon2id + XChaCha20-Poly1305.
// The KDF parameters travel with the output so Open needs only the password.
func Seal(plaintext, password []byte, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make([]byte, SaltSize, headerSize+chacha20poly1305.NonceSizeX+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := rand.Read(out[:SaltSize]); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	out = binary.LittleEndian.AppendUint32(out, p.Memory)
	out = binary.LittleEndian.AppendUint32(out, p.Iterations)
	out = append(out, p.Parallelism)

	key := deriveKey(password, out[:SaltSize], p)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out = append(out, nonce...)

	// The header is authenticated so tampered KDF parameters fail to open.
	header := bytes.Clone(out[:headerSize])
	return aead.Seal(out, nonce, plaintext, header), nil
}

// Open decrypts data produced by Seal.
func Open(sealed, password []byte) ([]byte, error) {
	nonceSize := chacha20poly1305.NonceSizeX
	minSize := headerSize + nonceSize + chacha20poly1305.Overhead
	if len(sealed) < minSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrSealedTooShort, len(sealed), minSize)
	}

	salt := sealed[:SaltSize]
	p := Params{
		Memory:      binary.LittleEndian.Uint32(sealed[SaltSize:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[SaltSize+4:]),
		Parallelism: sealed[SaltSize+8],
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("sealed header: %w", err)
	}
	nonce := sealed[headerSize : headerSize+nonceSize]
	ciphertext := sealed[headerSize+nonceSize:]

	key := deriveKey(password, salt, p)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, sealed[:headerSize])
	if err != nil {
		return nil, ErrBadPassword
	}
	return plaintext, nil
}
