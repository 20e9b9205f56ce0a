// Package party implements a concrete three-party semi-honest engine for
// the two external collaborators the core protocol suspends on: a
// GF(2^128) arithmetic black-box (constant, mul, generate_random,
// output_round) and an AES-128 black-box (constant, keyschedule,
// no-keyschedule). The AES half opens its operands and calls crypto/aes
// directly, a functional reference implementation rather than a secure
// multiparty circuit; the GF(128) half stays fully interactive.
//
// Parties are indexed 0, 1, 2. Party p holds the replicated pair
// (a_{p-1 mod 3}, a_p) of any secret-shared value; see rss.ShareGF8 and
// rss.ShareGF128.
package party

import (
	"crypto/aes"
	"fmt"

	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
	"github.com/mozaik-sbo/libmozaik-go/internal/randgen"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
	"github.com/mozaik-sbo/libmozaik-go/internal/transport"
)

// KeySchedule is an AES-128 key schedule: 11 round keys of 16 bytes each.
// It is a plain (public) value rather than a replicated share: by the
// time AES128KeySchedule returns one, the underlying key has already
// been opened (see AES128KeySchedule's doc comment), so every party
// already holds the identical schedule in the clear.
type KeySchedule [11][16]byte

// Party is one of the three MPC engines. It implements both the
// GF(128) arithmetic black-box and the AES black-box the core protocol
// depends on.
type Party struct {
	id int
	ch transport.Channel

	// correlated randomness, three streams per neighboring seed:
	// "rand" feeds GenerateRandomBytes, "randgf128" feeds
	// GenerateRandomGF128, "mulmask" feeds multiplication
	// re-randomization.
	randPrev, randNext     *randgen.Stream
	maskPrev, maskNext     *randgen.Stream
	randPrevGF, randNextGF *randgen.Stream
}

// New builds a Party. seedPrev is the 256-bit seed shared with party
// (id-1+3)%3, seedNext the seed shared with party (id+1)%3.
func New(id int, ch transport.Channel, seedPrev, seedNext [32]byte) (*Party, error) {
	if id < 0 || id > 2 {
		return nil, fmt.Errorf("party: id must be 0, 1 or 2, got %d", id)
	}
	randPrev, err := randgen.NewStream(seedPrev, "rand")
	if err != nil {
		return nil, err
	}
	randNext, err := randgen.NewStream(seedNext, "rand")
	if err != nil {
		return nil, err
	}
	maskPrev, err := randgen.NewStream(seedPrev, "mulmask")
	if err != nil {
		return nil, err
	}
	maskNext, err := randgen.NewStream(seedNext, "mulmask")
	if err != nil {
		return nil, err
	}
	randPrevGF, err := randgen.NewStream(seedPrev, "randgf128")
	if err != nil {
		return nil, err
	}
	randNextGF, err := randgen.NewStream(seedNext, "randgf128")
	if err != nil {
		return nil, err
	}
	return &Party{
		id:         id,
		ch:         ch,
		randPrev:   randPrev,
		randNext:   randNext,
		maskPrev:   maskPrev,
		maskNext:   maskNext,
		randPrevGF: randPrevGF,
		randNextGF: randNextGF,
	}, nil
}

func (p *Party) next() int { return (p.id + 1) % 3 }
func (p *Party) prev() int { return (p.id + 2) % 3 }

// ConstantBytes wraps a public byte slice as a trivial replicated share
// for every party: party 0 places v in Sii, party 1 in Si, party 2 holds
// an all-zero share, i.e. a_0 = v and a_1 = a_2 = 0 under the
// (a_{p-1 mod 3}, a_p) convention.
func (p *Party) ConstantBytes(v []byte) []rss.ShareGF8 {
	out := make([]rss.ShareGF8, len(v))
	for i, b := range v {
		switch p.id {
		case 0:
			out[i] = rss.ShareGF8{Si: 0, Sii: b}
		case 1:
			out[i] = rss.ShareGF8{Si: b, Sii: 0}
		default:
			out[i] = rss.ShareGF8{Si: 0, Sii: 0}
		}
	}
	return out
}

// ConstantGF128 is ConstantBytes specialized to a single GF(128) element.
func (p *Party) ConstantGF128(v gf128.Element) rss.ShareGF128 {
	switch p.id {
	case 0:
		return rss.ShareGF128{Si: gf128.Zero, Sii: v}
	case 1:
		return rss.ShareGF128{Si: v, Sii: gf128.Zero}
	default:
		return rss.ShareGF128{Si: gf128.Zero, Sii: gf128.Zero}
	}
}

// GenerateRandomBytes draws n fresh, jointly random secret-shared bytes
// with no communication: each party locally advances its two
// neighbor-keyed PRG streams.
func (p *Party) GenerateRandomBytes(n int) []rss.ShareGF8 {
	si := p.randPrev.NextBytes(n)
	sii := p.randNext.NextBytes(n)
	out := make([]rss.ShareGF8, n)
	for i := range out {
		out[i] = rss.ShareGF8{Si: si[i], Sii: sii[i]}
	}
	return out
}

// GenerateRandomGF128 draws one fresh, jointly random secret-shared
// GF(128) element with no communication.
func (p *Party) GenerateRandomGF128() rss.ShareGF128 {
	return rss.ShareGF128{
		Si:  p.randPrevGF.NextGF128(),
		Sii: p.randNextGF.NextGF128(),
	}
}

// zeroMaskBytes returns this party's share of a fresh length-n zero
// sharing (alpha_0 xor alpha_1 xor alpha_2 == 0 byte-wise), used to
// re-randomize a multiplication's local cross term before resharing.
func (p *Party) zeroMaskBytes(n int) []byte {
	rNext := p.maskNext.NextBytes(n)
	rPrev := p.maskPrev.NextBytes(n)
	out := make([]byte, n)
	for i := range out {
		out[i] = rNext[i] ^ rPrev[i]
	}
	return out
}

func (p *Party) zeroMaskGF128() gf128.Element {
	rNext := p.maskNext.NextGF128()
	rPrev := p.maskPrev.NextGF128()
	return rNext.Add(rPrev)
}

// MulBytes multiplies two replicated byte vectors in GF(2^8) (AES field,
// reduction constant 0x1B), one interactive round.
func (p *Party) MulBytes(a, b []rss.ShareGF8) ([]rss.ShareGF8, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("party: mismatched lengths %d vs %d", len(a), len(b))
	}
	n := len(a)
	local := make([]byte, n)
	for i := range local {
		local[i] = gf8Mul(a[i].Si, b[i].Si) ^ gf8Mul(a[i].Si, b[i].Sii) ^ gf8Mul(a[i].Sii, b[i].Si)
	}
	mask := p.zeroMaskBytes(n)
	outgoing := make([]byte, n)
	for i := range outgoing {
		outgoing[i] = local[i] ^ mask[i]
	}
	if err := p.ch.SendTo(p.next(), outgoing); err != nil {
		return nil, fmt.Errorf("party: sending mul share: %w", err)
	}
	incoming, err := p.ch.RecvFrom(p.prev())
	if err != nil {
		return nil, fmt.Errorf("party: receiving mul share: %w", err)
	}
	if len(incoming) != n {
		return nil, fmt.Errorf("party: expected %d bytes from mul peer, got %d", n, len(incoming))
	}
	out := make([]rss.ShareGF8, n)
	for i := range out {
		out[i] = rss.ShareGF8{Si: incoming[i], Sii: outgoing[i]}
	}
	return out, nil
}

// Mul multiplies two replicated GF(128) elements, one interactive round.
func (p *Party) Mul(a, b rss.ShareGF128) (rss.ShareGF128, error) {
	local := a.Si.Mul(b.Si).Add(a.Si.Mul(b.Sii)).Add(a.Sii.Mul(b.Si))
	outgoing := local.Add(p.zeroMaskGF128())

	if err := p.ch.SendTo(p.next(), outgoing.Bytes()); err != nil {
		return rss.ShareGF128{}, fmt.Errorf("party: sending mul share: %w", err)
	}
	incomingBytes, err := p.ch.RecvFrom(p.prev())
	if err != nil {
		return rss.ShareGF128{}, fmt.Errorf("party: receiving mul share: %w", err)
	}
	incoming, err := gf128.FromBytes(incomingBytes)
	if err != nil {
		return rss.ShareGF128{}, fmt.Errorf("party: decoding mul share: %w", err)
	}
	return rss.ShareGF128{Si: incoming, Sii: outgoing}, nil
}

// OutputRoundBytes opens a replicated byte vector to all three parties,
// one interactive round.
func (p *Party) OutputRoundBytes(shares []rss.ShareGF8) ([]byte, error) {
	n := len(shares)
	outgoing := make([]byte, n)
	for i, s := range shares {
		outgoing[i] = s.Sii
	}
	if err := p.ch.SendTo(p.prev(), outgoing); err != nil {
		return nil, fmt.Errorf("party: sending output share: %w", err)
	}
	incoming, err := p.ch.RecvFrom(p.next())
	if err != nil {
		return nil, fmt.Errorf("party: receiving output share: %w", err)
	}
	if len(incoming) != n {
		return nil, fmt.Errorf("party: expected %d bytes opening, got %d", n, len(incoming))
	}
	out := make([]byte, n)
	for i, s := range shares {
		out[i] = s.Si ^ s.Sii ^ incoming[i]
	}
	return out, nil
}

// OutputRoundGF128 opens a replicated GF(128) element, one interactive
// round.
func (p *Party) OutputRoundGF128(share rss.ShareGF128) (gf128.Element, error) {
	if err := p.ch.SendTo(p.prev(), share.Sii.Bytes()); err != nil {
		return gf128.Element{}, fmt.Errorf("party: sending output share: %w", err)
	}
	incomingBytes, err := p.ch.RecvFrom(p.next())
	if err != nil {
		return gf128.Element{}, fmt.Errorf("party: receiving output share: %w", err)
	}
	incoming, err := gf128.FromBytes(incomingBytes)
	if err != nil {
		return gf128.Element{}, fmt.Errorf("party: decoding output share: %w", err)
	}
	return share.Si.Add(share.Sii).Add(incoming), nil
}

// AES128KeySchedule reveals the shared key (one OutputRound) and expands
// it into a full FIPS-197 key schedule with the AES-128 key expansion.
// The multiparty S-box circuit that would keep this step secret is
// explicitly outside this core's scope.
func (p *Party) AES128KeySchedule(keyShares []rss.ShareGF8) (KeySchedule, error) {
	var ks KeySchedule
	if len(keyShares) != 16 {
		return ks, fmt.Errorf("party: AES-128 key must be 16 bytes, got %d", len(keyShares))
	}
	key, err := p.OutputRoundBytes(keyShares)
	if err != nil {
		return ks, err
	}
	return expandAES128KeySchedule(key), nil
}

// AES128NoKeySchedule encrypts every 16-byte block in blocks with the
// already-expanded key schedule, revealing the blocks (one OutputRound
// for the whole batch), running the real AES-128 block cipher, and
// re-wrapping each ciphertext block as a Constant share. A single call
// handles arbitrarily many blocks, matching the "one AES black-box call
// encrypts all blocks" shape the counter-derivation step needs.
func (p *Party) AES128NoKeySchedule(ks KeySchedule, blocks [][]rss.ShareGF8) ([][]rss.ShareGF8, error) {
	n := len(blocks)
	flat := make([]rss.ShareGF8, 0, n*16)
	for _, blk := range blocks {
		if len(blk) != 16 {
			return nil, fmt.Errorf("party: AES block must be 16 bytes, got %d", len(blk))
		}
		flat = append(flat, blk...)
	}
	openFlat, err := p.OutputRoundBytes(flat)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(ks[0][:])
	if err != nil {
		return nil, fmt.Errorf("party: building AES cipher: %w", err)
	}

	out := make([][]rss.ShareGF8, n)
	ciphertextByte := make([]byte, 16)
	for i := 0; i < n; i++ {
		block.Encrypt(ciphertextByte, openFlat[i*16:i*16+16])
		out[i] = p.ConstantBytes(ciphertextByte)
	}
	return out, nil
}
