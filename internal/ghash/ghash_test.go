package ghash

import (
	"sync"
	"testing"

	"github.com/mozaik-sbo/libmozaik-go/internal/party"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
	"github.com/mozaik-sbo/libmozaik-go/internal/transport"
)

func buildThreeParties(t *testing.T) [3]*party.Party {
	t.Helper()
	net := transport.NewLocalNetwork()
	seedA := [32]byte{0xA}
	seedB := [32]byte{0xB}
	seedC := [32]byte{0xC}
	p0, err := party.New(0, net.Endpoint(0), seedC, seedA)
	if err != nil {
		t.Fatalf("New(0): %v", err)
	}
	p1, err := party.New(1, net.Endpoint(1), seedA, seedB)
	if err != nil {
		t.Fatalf("New(1): %v", err)
	}
	p2, err := party.New(2, net.Endpoint(2), seedB, seedC)
	if err != nil {
		t.Fatalf("New(2): %v", err)
	}
	return [3]*party.Party{p0, p1, p2}
}

func splitZeroKey(t *testing.T, parties [3]*party.Party) [3][]rss.ShareGF8 {
	t.Helper()
	split, err := rss.SplitBytes(make([]byte, 16))
	if err != nil {
		t.Fatalf("SplitBytes: %v", err)
	}
	return split
}

func TestZeroKeyAnnihilatesEverything(t *testing.T) {
	parties := buildThreeParties(t)
	keyShares := splitZeroKey(t, parties)

	ad := []byte("some associated data, arbitrary length")
	ctPlain := []byte("ciphertext bytes of arbitrary length!!")

	var wg sync.WaitGroup
	tags := make([][]rss.ShareGF8, 3)
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctShares := parties[i].ConstantBytes(ctPlain)
			out, err := Compute(parties[i], keyShares[i], ad, ctShares)
			tags[i], errs[i] = out, err
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
		got[i] = rss.ReconstructBytes([3]rss.ShareGF8{tags[0][i], tags[1][i], tags[2][i]})
	}
	for _, b := range got {
		if b != 0 {
			t.Fatalf("expected all-zero tag with zero key, got %x", got)
		}
	}
}
