// Package mnemonic converts between raw entropy and BIP-39 style word lists.
//
// The entropy is followed by a checksum byte, and the resulting bit stream is
// cut into 11-bit groups, each naming a word in the 2048-word dictionary.
// The number of checksum bits carried is len(entropy)/4, so the total is
// always a multiple of 11.
package mnemonic

import (
	"slices"
	"strings"
)

// Separator joins mnemonic words in the text form.
const Separator = " "

// Mnemonic is a validated, immutable sequence of dictionary words. Values
// come from a Codec; the zero Mnemonic has no words and no entropy.
type Mnemonic struct {
	words   []string
	indices []uint16
}

// String returns the words joined by single spaces.
func (m *Mnemonic) String() string {
	if m == nil {
		return ""
	}
	return strings.Join(m.words, Separator)
}

// Words returns a copy of the word list.
func (m *Mnemonic) Words() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.words)
}

// Len returns the number of words.
func (m *Mnemonic) Len() int {
	if m == nil {
		return 0
	}
	return len(m.words)
}

// Equal reports whether both mnemonics have the same words in the same order.
func (m *Mnemonic) Equal(other *Mnemonic) bool {
	if m == nil || other == nil {
		return m == other
	}
	return slices.Equal(m.words, other.words)
}

// Entropy recovers the entropy bytes the mnemonic encodes. It returns nil
// for a nil or zero Mnemonic.
func (m *Mnemonic) Entropy() []byte {
	if m == nil || len(m.indices) == 0 {
		return nil
	}
	buf := m.pack()
	return buf[:len(buf)-1]
}

// pack writes the word indices back into entropy || checksum form.
func (m *Mnemonic) pack() []byte {
	p := newBitPacker(len(m.indices))
	for _, idx := range m.indices {
		p.write11(idx)
	}
	p.finish()
	return p.bytes()
}
