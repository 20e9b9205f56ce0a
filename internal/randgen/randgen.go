// Package randgen provides deterministic, domain-separated pseudorandom
// streams derived from a shared 256-bit seed. Two parties that agree on a
// seed and a label can independently draw the same sequence of bytes
// without further communication, which is exactly what the three-party
// protocol's "generate_random" and multiplication-masking suspension
// points need.
package randgen

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
)

// Stream is an AES-CTR keystream keyed by SHA-256(seed || label), so
// streams built from the same seed but different labels never overlap.
type Stream struct {
	stream cipher.Stream
}

// NewStream derives a fresh stream from a 32-byte seed and a label.
func NewStream(seed [32]byte, label string) (*Stream, error) {
	h := sha256.New()
	h.Write(seed[:])
	h.Write([]byte(label))
	key := h.Sum(nil)[:16]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("randgen: building cipher: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	return &Stream{stream: cipher.NewCTR(block, iv)}, nil
}

// NextBytes returns n fresh pseudorandom bytes.
func (s *Stream) NextBytes(n int) []byte {
	out := make([]byte, n)
	s.stream.XORKeyStream(out, out)
	return out
}

// NextGF128 returns one fresh pseudorandom GF(128) element.
func (s *Stream) NextGF128() gf128.Element {
	b := s.NextBytes(16)
	elem, _ := gf128.FromBytes(b)
	return elem
}
