// Package gf8bridge implements the linear, invertible bridge between 16
// replicated GF(2^8) shares (one per byte) and a single replicated
// GF(2^128) share, matching the byte layout gf128.Element already uses
// (SP 800-38D big-endian, bit-reversed-within-byte encoding). Because the
// mapping is a fixed bit permutation with no carries, it commutes with
// secret sharing: applying it independently to each of a replicated
// share's two summands, or to the reconstructed secret, gives the same
// result.
package gf8bridge

import (
	"fmt"

	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
)

// ToGF128 packs 16 replicated GF(8) shares into one replicated GF(128)
// share.
func ToGF128(bytes_ []rss.ShareGF8) (rss.ShareGF128, error) {
	if len(bytes_) != 16 {
		return rss.ShareGF128{}, fmt.Errorf("gf8bridge: need 16 bytes, got %d", len(bytes_))
	}
	var si, sii [16]byte
	for i, b := range bytes_ {
		si[i] = b.Si
		sii[i] = b.Sii
	}
	siElem, err := gf128.FromBytes(si[:])
	if err != nil {
		return rss.ShareGF128{}, err
	}
	siiElem, err := gf128.FromBytes(sii[:])
	if err != nil {
		return rss.ShareGF128{}, err
	}
	return rss.ShareGF128{Si: siElem, Sii: siiElem}, nil
}

// FromGF128 unpacks one replicated GF(128) share into 16 replicated GF(8)
// shares.
func FromGF128(elem rss.ShareGF128) []rss.ShareGF8 {
	si := elem.Si.Bytes()
	sii := elem.Sii.Bytes()
	out := make([]rss.ShareGF8, 16)
	for i := range out {
		out[i] = rss.ShareGF8{Si: si[i], Sii: sii[i]}
	}
	return out
}
