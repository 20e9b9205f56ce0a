package party

import (
	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
)

// GF128BlackBox is the narrow GF(2^128) arithmetic contract the GHASH and
// tag-check components consume: constant, mul, generate_random,
// output_round.
type GF128BlackBox interface {
	ConstantGF128(v gf128.Element) rss.ShareGF128
	Mul(a, b rss.ShareGF128) (rss.ShareGF128, error)
	GenerateRandomGF128() rss.ShareGF128
	OutputRoundGF128(share rss.ShareGF128) (gf128.Element, error)
}

// AESBlackBox is the narrow AES contract the counter-derivation component
// consumes: constant, keyschedule, no-keyschedule.
type AESBlackBox interface {
	ConstantBytes(v []byte) []rss.ShareGF8
	AES128KeySchedule(keyShares []rss.ShareGF8) (KeySchedule, error)
	AES128NoKeySchedule(ks KeySchedule, blocks [][]rss.ShareGF8) ([][]rss.ShareGF8, error)
}

var (
	_ GF128BlackBox = (*Party)(nil)
	_ AESBlackBox   = (*Party)(nil)
)
