package mnemonic

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-mnemonic/pkg/crypto"
)

// ChecksumFunc returns the checksum byte for entropy: the first byte of a
// digest of it. Only the top len(entropy)/4 bits end up in the mnemonic.
type ChecksumFunc func(entropy []byte) byte

// SHA256Checksum is the BIP-39 checksum.
func SHA256Checksum(entropy []byte) byte {
	d := crypto.SHA256(entropy)
	return d[0]
}

// Blake3Checksum derives the checksum from BLAKE3-256 instead of SHA-256.
// Mnemonics produced with it are not interchangeable with BIP-39 wallets.
func Blake3Checksum(entropy []byte) byte {
	d := crypto.Blake3(entropy)
	return d[0]
}

// Checksum algorithm names accepted by ChecksumByName.
const (
	ChecksumSHA256 = "sha256"
	ChecksumBlake3 = "blake3"
)

// ChecksumByName resolves a checksum algorithm name.
func ChecksumByName(name string) (ChecksumFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ChecksumSHA256, "":
		return SHA256Checksum, nil
	case ChecksumBlake3:
		return Blake3Checksum, nil
	default:
		return nil, fmt.Errorf("unknown checksum algorithm %q (want %s or %s)", name, ChecksumSHA256, ChecksumBlake3)
	}
}

// checksumBits returns how many checksum bits a mnemonic carries for an
// entropy of entropyLen bytes.
func checksumBits(entropyLen int) int {
	return entropyLen / 4
}
