package mnemonic

import (
	"fmt"
	"slices"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// WordListSize is the number of words in the dictionary.
const WordListSize = 1 << wordBits

// wordList is the BIP-39 English dictionary. The index of a word is the
// 11-bit value it encodes, so the order must never change.
var wordList = wordlists.English

func init() {
	if len(wordList) != WordListSize {
		panic(fmt.Sprintf("mnemonic: dictionary has %d words, want %d", len(wordList), WordListSize))
	}
	for i := 1; i < len(wordList); i++ {
		if wordList[i-1] >= wordList[i] {
			panic(fmt.Sprintf("mnemonic: dictionary not sorted at index %d (%q >= %q)", i, wordList[i-1], wordList[i]))
		}
	}
}

// Word returns the dictionary word at index i.
func Word(i int) string {
	return wordList[i]
}

// WordIndex returns the dictionary index of word, using binary search.
func WordIndex(word string) (int, bool) {
	return slices.BinarySearch(wordList, word)
}

// WordList returns a copy of the dictionary.
func WordList() []string {
	return slices.Clone(wordList)
}
