package mnemonic

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-mnemonic/internal/log"
)

// Codec encodes entropy to mnemonics and decodes them back.
// A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	checksum ChecksumFunc
}

// Option configures a Codec.
type Option func(*Codec)

// WithChecksum sets the checksum function. The default is SHA256Checksum.
func WithChecksum(fn ChecksumFunc) Option {
	return func(c *Codec) {
		if fn != nil {
			c.checksum = fn
		}
	}
}

// NewCodec creates a codec with the given options.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{checksum: SHA256Checksum}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultCodec is the BIP-39 codec used by the package-level functions.
var defaultCodec = NewCodec()

// FromEntropy encodes entropy with the BIP-39 checksum.
func FromEntropy(entropy []byte) (*Mnemonic, error) {
	return defaultCodec.FromEntropy(entropy)
}

// Parse decodes and validates a mnemonic with the BIP-39 checksum.
func Parse(s string) (*Mnemonic, error) {
	return defaultCodec.Parse(s)
}

// FromEntropy encodes entropy as a mnemonic. The entropy length must be one
// of 16, 20, 24, 28 or 32 bytes.
func (c *Codec) FromEntropy(entropy []byte) (*Mnemonic, error) {
	n, err := WordsForEntropyLen(len(entropy))
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(entropy)+1)
	buf = append(buf, entropy...)
	buf = append(buf, c.checksum(entropy))

	// Trailing checksum bits past n*11 are never read.
	r := newBitUnpacker(buf)
	m := &Mnemonic{
		words:   make([]string, n),
		indices: make([]uint16, n),
	}
	for i := 0; i < n; i++ {
		idx := r.read11()
		m.indices[i] = idx
		m.words[i] = wordList[idx]
	}

	log.Codec.Debug().Int("entropy_bytes", len(entropy)).Int("words", n).Msg("Encoded mnemonic")
	return m, nil
}

// Parse decodes a space separated mnemonic and verifies its checksum.
//
// Checks run in a fixed order and the first failure is returned: word count
// (ErrInvalidWordCount), dictionary membership (ErrUnknownWord), then the
// checksum (ErrChecksumMismatch).
func (c *Codec) Parse(s string) (*Mnemonic, error) {
	words := strings.Split(s, Separator)
	n := len(words)
	if !validWordCount(n) {
		log.Codec.Debug().Int("words", n).Msg("Rejected mnemonic word count")
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWordCount, n)
	}

	m := &Mnemonic{
		words:   make([]string, n),
		indices: make([]uint16, n),
	}
	for i, w := range words {
		idx, ok := WordIndex(w)
		if !ok {
			log.Codec.Debug().Int("position", i+1).Msg("Rejected unknown mnemonic word")
			return nil, &UnknownWordError{Index: i, Word: w}
		}
		m.words[i] = wordList[idx]
		m.indices[i] = uint16(idx)
	}

	buf := m.pack()
	entropy, got := buf[:len(buf)-1], buf[len(buf)-1]

	// The last byte holds the checksum in its top n/3 bits. Compare both
	// sides over that window only.
	shift := 8 - checksumBits(len(entropy))
	want := c.checksum(entropy) >> shift
	if got>>shift != want {
		log.Codec.Debug().Int("words", n).Msg("Rejected mnemonic checksum")
		return nil, ErrChecksumMismatch
	}
	return m, nil
}

// Validate reports why s is not a valid mnemonic, or nil if it is.
func (c *Codec) Validate(s string) error {
	_, err := c.Parse(s)
	return err
}

// EntropyFromMnemonic validates s and returns the entropy it encodes.
func (c *Codec) EntropyFromMnemonic(s string) ([]byte, error) {
	m, err := c.Parse(s)
	if err != nil {
		return nil, err
	}
	return m.Entropy(), nil
}

// Generate creates a mnemonic of the given word count from fresh entropy.
func (c *Codec) Generate(words int) (*Mnemonic, error) {
	entropyLen, err := EntropyLenForWords(words)
	if err != nil {
		return nil, err
	}
	entropy, err := NewEntropy(entropyLen)
	if err != nil {
		return nil, err
	}
	m, err := c.FromEntropy(entropy)
	clear(entropy)
	return m, err
}
