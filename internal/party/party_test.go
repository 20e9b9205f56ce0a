package party

import (
	"encoding/hex"
	"strings"
	"sync"
	"testing"

	"github.com/mozaik-sbo/libmozaik-go/internal/gf128"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
	"github.com/mozaik-sbo/libmozaik-go/internal/transport"
)

func buildThreeParties(t *testing.T) ([3]*Party, *transport.LocalNetwork) {
	t.Helper()
	net := transport.NewLocalNetwork()
	seedA := [32]byte{0xA}
	seedB := [32]byte{0xB}
	seedC := [32]byte{0xC}

	p0, err := New(0, net.Endpoint(0), seedC, seedA)
	if err != nil {
		t.Fatalf("New(0): %v", err)
	}
	p1, err := New(1, net.Endpoint(1), seedA, seedB)
	if err != nil {
		t.Fatalf("New(1): %v", err)
	}
	p2, err := New(2, net.Endpoint(2), seedB, seedC)
	if err != nil {
		t.Fatalf("New(2): %v", err)
	}
	return [3]*Party{p0, p1, p2}, net
}

func mustHexParty(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex literal %q: %v", s, err)
	}
	return b
}

// runAllThree runs fn concurrently for all three parties and returns
// their results in party-index order, failing the test on any error.
func runAllThree(t *testing.T, parties [3]*Party, fn func(p *Party) (rss.ShareGF128, error)) [3]rss.ShareGF128 {
	t.Helper()
	var wg sync.WaitGroup
	var out [3]rss.ShareGF128
	var errs [3]error
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i], errs[i] = fn(parties[i])
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("party %d: %v", i, err)
		}
	}
	return out
}

func reconstructGF128(shares [3]rss.ShareGF128) gf128.Element {
	// party 0 holds (a2, a0); party 1 holds (a0, a1).
	return shares[0].Si.Add(shares[0].Sii).Add(shares[1].Sii)
}

func TestMulOfConstants(t *testing.T) {
	parties, _ := buildThreeParties(t)
	a, _ := gf128.FromBytes(mustHexParty(t, strings.Repeat("11", 16)))
	b, _ := gf128.FromBytes(mustHexParty(t, strings.Repeat("22", 16)))
	want := a.Mul(b)

	shares := runAllThree(t, parties, func(p *Party) (rss.ShareGF128, error) {
		ca := p.ConstantGF128(a)
		cb := p.ConstantGF128(b)
		return p.Mul(ca, cb)
	})
	got := reconstructGF128(shares)
	if got != want {
		t.Fatalf("got %x want %x", got.Bytes(), want.Bytes())
	}
}

func TestGenerateRandomIsConsistent(t *testing.T) {
	parties, _ := buildThreeParties(t)
	var shares [3]rss.ShareGF128
	for i, p := range parties {
		shares[i] = p.GenerateRandomGF128()
	}
	// Every party's view of the shared summands must agree: party 0's Sii
	// (its a_0) must equal party 1's Si (also a_0), and so on around the
	// ring, even though generate_random used no communication.
	if shares[0].Sii != shares[1].Si {
		t.Fatal("a_0 disagreement between party 0 and party 1")
	}
	if shares[1].Sii != shares[2].Si {
		t.Fatal("a_1 disagreement between party 1 and party 2")
	}
	if shares[2].Sii != shares[0].Si {
		t.Fatal("a_2 disagreement between party 2 and party 0")
	}
}

func TestOutputRoundOpensConstant(t *testing.T) {
	parties, _ := buildThreeParties(t)
	v, _ := gf128.FromBytes(mustHexParty(t, "deadbeefdeadbeefdeadbeefdeadbeef"))

	type res struct {
		val gf128.Element
		err error
	}
	var wg sync.WaitGroup
	out := make([]res, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			share := parties[i].ConstantGF128(v)
			val, err := parties[i].OutputRoundGF128(share)
			out[i] = res{val, err}
		}(i)
	}
	wg.Wait()
	for i, r := range out {
		if r.err != nil {
			t.Fatalf("party %d: %v", i, r.err)
		}
		if r.val != v {
			t.Fatalf("party %d: got %x want %x", i, r.val.Bytes(), v.Bytes())
		}
	}
}

// FIPS-197 Appendix C.1: AES-128 test vector.
func TestAES128KeyScheduleAndEncrypt(t *testing.T) {
	parties, _ := buildThreeParties(t)
	key := mustHexParty(t, "000102030405060708090a0b0c0d0e0f")
	plaintext := mustHexParty(t, "00112233445566778899aabbccddeeff")
	want := mustHexParty(t, "69c4e0d86a7b0430d8cdb78070b4c55a")

	split, err := rss.SplitBytes(key)
	if err != nil {
		t.Fatalf("SplitBytes: %v", err)
	}
	plainSplit, err := rss.SplitBytes(plaintext)
	if err != nil {
		t.Fatalf("SplitBytes: %v", err)
	}

	var wg sync.WaitGroup
	cts := make([][]rss.ShareGF8, 3)
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := parties[i]
			ks, err := p.AES128KeySchedule(split[i])
			if err != nil {
				errs[i] = err
				return
			}
			out, err := p.AES128NoKeySchedule(ks, [][]rss.ShareGF8{plainSplit[i]})
			if err != nil {
				errs[i] = err
				return
			}
			cts[i] = out[0]
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("party %d: %v", i, err)
		}
	}

	got := make([]byte, 16)
	for i := range got {
		got[i] = rss.ReconstructBytes([3]rss.ShareGF8{cts[0][i], cts[1][i], cts[2][i]})
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %x want %x", i, got[i], want[i])
		}
	}
}
