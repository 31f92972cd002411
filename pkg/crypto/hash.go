// Package crypto provides the digest primitives used for mnemonic checksums.
package crypto

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
)

// DigestSize is the output size of every digest in this package.
const DigestSize = 32

// Digest is a 256-bit hash value.
type Digest [DigestSize]byte

// SHA256 computes the SHA-256 digest of data.
// This is the digest BIP-39 specifies for the mnemonic checksum.
func SHA256(data []byte) Digest {
	return sha256.Sum256(data)
}

// Blake3 computes a BLAKE3-256 hash of the input data.
func Blake3(data []byte) Digest {
	return blake3.Sum256(data)
}
