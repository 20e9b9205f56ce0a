// Package rss implements 2-out-of-3 replicated additive secret sharing
// ("RSS") over bytes (GF(2^8)) and over gf128.Element (GF(2^128)).
//
// A secret x is split into three summands a0, a1, a2 with
// x = a0 + a1 + a2 (XOR for bytes, field addition for GF(128)). Party p
// (0, 1, 2) holds the ordered pair (a_{p-1 mod 3}, a_p). A
// multiplication sends to (p+1) mod 3 and receives from (p+2) mod 3; an
// opening sends to (p+2) mod 3 and receives from (p+1) mod 3.
package rss

import (
	"crypto/rand"
	"fmt"

	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
)

// ShareGF8 is one party's pair of summands of a byte secret.
type ShareGF8 struct {
	Si  byte
	Sii byte
}

// Add is local addition of two GF8 shares (no communication required).
func (s ShareGF8) Add(other ShareGF8) ShareGF8 {
	return ShareGF8{Si: s.Si ^ other.Si, Sii: s.Sii ^ other.Sii}
}

// ShareGF128 is one party's pair of summands of a GF(2^128) secret.
type ShareGF128 struct {
	Si  gf128.Element
	Sii gf128.Element
}

// Add is local addition of two GF128 shares (no communication required).
func (s ShareGF128) Add(other ShareGF128) ShareGF128 {
	return ShareGF128{Si: s.Si.Add(other.Si), Sii: s.Sii.Add(other.Sii)}
}

// SplitBytes secret-shares each byte of secret into three summands using
// fresh randomness, returning one ShareGF8 slice per party. Used by the
// demo CLI and by tests to produce inputs for the three-party protocol.
func SplitBytes(secret []byte) ([3][]ShareGF8, error) {
	var out [3][]ShareGF8
	for p := range out {
		out[p] = make([]ShareGF8, len(secret))
	}
	a0 := make([]byte, len(secret))
	a1 := make([]byte, len(secret))
	if _, err := rand.Read(a0); err != nil {
		return out, fmt.Errorf("rss: drawing randomness: %w", err)
	}
	if _, err := rand.Read(a1); err != nil {
		return out, fmt.Errorf("rss: drawing randomness: %w", err)
	}
	for i, s := range secret {
		a2 := s ^ a0[i] ^ a1[i]
		out[0][i] = ShareGF8{Si: a2, Sii: a0[i]}
		out[1][i] = ShareGF8{Si: a0[i], Sii: a1[i]}
		out[2][i] = ShareGF8{Si: a1[i], Sii: a2}
	}
	return out, nil
}

// ReconstructBytes recombines one secret byte from the three parties'
// shares at a single index, requiring only two parties' shares (any
// party's Si/Sii already cover two of the three summands).
func ReconstructBytes(shares [3]ShareGF8) byte {
	// party 0 holds a2 (Si) and a0 (Sii); party 1 holds a1 (Sii).
	return shares[0].Si ^ shares[0].Sii ^ shares[1].Sii
}
