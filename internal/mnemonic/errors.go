package mnemonic

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEntropyLength = errors.New("entropy must be 16, 20, 24, 28 or 32 bytes")
	ErrInvalidWordCount     = errors.New("mnemonic must have 12, 15, 18, 21 or 24 words")
	ErrUnknownWord          = errors.New("mnemonic contains an unknown word")
	ErrChecksumMismatch     = errors.New("mnemonic checksum failed")
)

// UnknownWordError reports the first word that is not in the dictionary.
// It matches ErrUnknownWord with errors.Is.
type UnknownWordError struct {
	Index int // zero-based position in the mnemonic
	Word  string
}

func (e *UnknownWordError) Error() string {
	return fmt.Sprintf("%v: word %d %q", ErrUnknownWord, e.Index+1, e.Word)
}

func (e *UnknownWordError) Unwrap() error {
	return ErrUnknownWord
}
