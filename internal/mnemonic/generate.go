package mnemonic

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// Size limits.
//
//	+---------+-------+-------+
//	| ENTROPY | BYTES | WORDS |
//	+---------+-------+-------+
//	|   128   |   16  |   12  |
//	|   160   |   20  |   15  |
//	|   192   |   24  |   18  |
//	|   224   |   28  |   21  |
//	|   256   |   32  |   24  |
//	+---------+-------+-------+
const (
	MinEntropyLen = 16
	MaxEntropyLen = 32
	MinWords      = 12
	MaxWords      = 24

	// wordBits is the number of bits each word encodes (log2 of WordListSize).
	wordBits = 11
)

// validEntropyLen reports whether n is an accepted entropy length in bytes.
func validEntropyLen(n int) bool {
	return n >= MinEntropyLen && n <= MaxEntropyLen && n%4 == 0
}

// validWordCount reports whether n is an accepted mnemonic length.
func validWordCount(n int) bool {
	return n >= MinWords && n <= MaxWords && n%3 == 0
}

// WordsForEntropyLen returns the mnemonic length for entropyLen bytes.
func WordsForEntropyLen(entropyLen int) (int, error) {
	if !validEntropyLen(entropyLen) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidEntropyLength, entropyLen)
	}
	return entropyLen * 3 / 4, nil
}

// EntropyLenForWords returns the entropy length in bytes for a mnemonic of
// the given word count.
func EntropyLenForWords(words int) (int, error) {
	if !validWordCount(words) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidWordCount, words)
	}
	return words * 4 / 3, nil
}

// NewEntropy returns entropyLen bytes from the system CSPRNG.
func NewEntropy(entropyLen int) ([]byte, error) {
	if !validEntropyLen(entropyLen) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidEntropyLength, entropyLen)
	}
	entropy, err := bip39.NewEntropy(entropyLen * 8)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	return entropy, nil
}
