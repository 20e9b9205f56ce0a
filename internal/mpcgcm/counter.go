package mpcgcm

import (
	"encoding/binary"

	"github.com/mozaik-sbo/libmozaik-go/internal/party"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
)

// deriveCounterOutput builds the single AES black-box call that produces
// both the GHASH key and the GCM counter-mode keystream: block 0 is the
// all-zero constant that becomes H = AES_K(0); blocks 1..nBlocks+1 are
// IV || BE32(counter) for counter = 1..nBlocks+1, whose encryptions are
// the GHASH output mask (block 1) followed by the keystream for each
// message block (blocks 2..nBlocks+1). Returns the flattened 16*(2+n)
// output bytes as shares, in that block order.
func deriveCounterOutput(bb party.AESBlackBox, iv []byte, nBlocks int, ks party.KeySchedule) ([]rss.ShareGF8, error) {
	if len(iv) != 12 {
		return nil, invalidParameters("IV must be 96 bits")
	}

	blocks := make([][]rss.ShareGF8, 0, 1+nBlocks+1)
	blocks = append(blocks, bb.ConstantBytes(make([]byte, 16)))

	for cnt := uint32(1); cnt <= uint32(nBlocks+1); cnt++ {
		var block [16]byte
		copy(block[:12], iv)
		binary.BigEndian.PutUint32(block[12:16], cnt)
		blocks = append(blocks, bb.ConstantBytes(block[:]))
	}

	output, err := bb.AES128NoKeySchedule(ks, blocks)
	if err != nil {
		return nil, ioError("running AES counter block encryption", err)
	}

	flat := make([]rss.ShareGF8, 0, 16*len(output))
	for _, blk := range output {
		flat = append(flat, blk...)
	}
	return flat, nil
}
