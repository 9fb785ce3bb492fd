// Package fingerprint derives stable BLAKE3 identities for corpus texts.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// sum hashes filename and content with a separator so that moving bytes
// between the two changes the result.
func sum(filename, content string) [32]byte {
	h := blake3.New()
	_, _ = h.Write([]byte(filename))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(content))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash returns the hex BLAKE3 digest of data.
func Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Text returns the hex fingerprint of a named corpus text.
func Text(filename, content string) string {
	s := sum(filename, content)
	return hex.EncodeToString(s[:])
}

// Seed returns a 64-bit value derived from the text fingerprint, for seeding
// deterministic generators.
func Seed(filename, content string) uint64 {
	s := sum(filename, content)
	return binary.LittleEndian.Uint64(s[:8])
}
