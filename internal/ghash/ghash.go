// Package ghash implements the GHASH universal hash used by AES-GCM-128,
// over secret-shared GF(8) bytes that get bridged to GF(128) for the
// actual field arithmetic.
package ghash

import (
	"encoding/binary"
	"fmt"

	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
	"github.com/mozaik-sbo/libmozaik-go/internal/gf8bridge"
	"github.com/mozaik-sbo/libmozaik-go/internal/party"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
)

// Compute runs the GHASH accumulation: absorbs associatedData as public
// (constant) 128-bit blocks, absorbs ciphertext as shared 128-bit blocks,
// and multiplies by ghashKey after every absorbed block, finishing with
// the standard length block BE64(8*|AD|) || BE64(8*|CT|). associatedData
// is public plaintext bytes; ciphertext is a secret-shared byte slice
// (the caller wraps public bytes as Constant shares when needed, e.g.
// during decryption).
func Compute(bb party.GF128BlackBox, ghashKeyShares []rss.ShareGF8, associatedData []byte, ciphertext []rss.ShareGF8) ([]rss.ShareGF8, error) {
	ghashKey, err := gf8bridge.ToGF128(ghashKeyShares)
	if err != nil {
		return nil, fmt.Errorf("ghash: decoding key: %w", err)
	}

	state := bb.ConstantGF128(gf128.Zero)

	for off := 0; off < len(associatedData); off += 16 {
		end := off + 16
		if end > len(associatedData) {
			end = len(associatedData)
		}
		var full [16]byte
		copy(full[:], associatedData[off:end])
		block, err := gf128.FromBytes(full[:])
		if err != nil {
			return nil, err
		}
		state = state.Add(bb.ConstantGF128(block))
		state, err = bb.Mul(state, ghashKey)
		if err != nil {
			return nil, fmt.Errorf("ghash: absorbing AD block: %w", err)
		}
	}

	for off := 0; off < len(ciphertext); off += 16 {
		end := off + 16
		if end > len(ciphertext) {
			end = len(ciphertext)
		}
		var blockShares [16]rss.ShareGF8
		for i := off; i < end; i++ {
			blockShares[i-off] = ciphertext[i]
		}
		blockElem, err := gf8bridge.ToGF128(blockShares[:])
		if err != nil {
			return nil, err
		}
		state = state.Add(blockElem)
		state, err = bb.Mul(state, ghashKey)
		if err != nil {
			return nil, fmt.Errorf("ghash: absorbing CT block: %w", err)
		}
	}

	var lastBlock [16]byte
	binary.BigEndian.PutUint64(lastBlock[0:8], uint64(len(associatedData))*8)
	binary.BigEndian.PutUint64(lastBlock[8:16], uint64(len(ciphertext))*8)
	lastElem, err := gf128.FromBytes(lastBlock[:])
	if err != nil {
		return nil, err
	}
	state = state.Add(bb.ConstantGF128(lastElem))
	state, err = bb.Mul(state, ghashKey)
	if err != nil {
		return nil, fmt.Errorf("ghash: absorbing length block: %w", err)
	}

	return gf8bridge.FromGF128(state), nil
}
