// Package tagcheck implements the one tag-check strategy this repository
// ships: a semi-honest check that trusts the parties not to lie about
// the opened zero-check value. A malicious-secure check (verifying the
// opening itself rather than trusting it) is out of scope.
package tagcheck

import (
	"fmt"

	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
	"github.com/mozaik-sbo/libmozaik-go/internal/gf8bridge"
	"github.com/mozaik-sbo/libmozaik-go/internal/mpcgcm"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
)

// SemiHonest draws a fresh random shared GF(128) element r, computes
// z = r * (T - T_hat) for the expected tag T and computed tag T_hat via
// one interactive multiplication, opens z, and accepts iff z is zero.
// Matches mpcgcm.TagCheckFunc.
func SemiHonest(bb mpcgcm.Blackbox, expectedTag []byte, computedTag []rss.ShareGF8) (bool, error) {
	if len(expectedTag) != 16 || len(computedTag) != 16 {
		return false, fmt.Errorf("tagcheck: tag must be 128 bits (16 bytes)")
	}
	expected, err := gf128.FromBytes(expectedTag)
	if err != nil {
		return false, err
	}
	computed, err := gf8bridge.ToGF128(computedTag)
	if err != nil {
		return false, err
	}

	r := bb.GenerateRandomGF128()
	diff := bb.ConstantGF128(expected).Add(computed) // GF(2^128) addition is its own inverse, so T - T_hat == T + T_hat.

	z, err := bb.Mul(r, diff)
	if err != nil {
		return false, fmt.Errorf("tagcheck: multiplying check value: %w", err)
	}
	opened, err := bb.OutputRoundGF128(z)
	if err != nil {
		return false, fmt.Errorf("tagcheck: opening check value: %w", err)
	}
	return opened.IsZero(), nil
}
