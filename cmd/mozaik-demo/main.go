// mozaik-demo runs all three protocol parties in a single process over
// an in-memory transport, for exercising the pipeline without standing
// up real network connections.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mozaik-sbo/libmozaik-go/internal/mpcgcm"
	"github.com/mozaik-sbo/libmozaik-go/internal/party"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
	"github.com/mozaik-sbo/libmozaik-go/internal/tagcheck"
	"github.com/mozaik-sbo/libmozaik-go/internal/transport"
)

var (
	keyHex     string
	ivHex      string
	messageHex string
	adHex      string

	rootCmd = &cobra.Command{
		Use:   "mozaik-demo",
		Short: "Run the three-party AES-GCM-128 pipeline in-process",
		RunE:  runDemo,
	}
)

func init() {
	rootCmd.Flags().StringVar(&keyHex, "key", "", "16-byte AES-128 key, hex (random if omitted)")
	rootCmd.Flags().StringVar(&ivHex, "iv", "", "12-byte IV, hex (random if omitted)")
	rootCmd.Flags().StringVar(&messageHex, "message", "48656c6c6f2c206d6f7a61696b21", "message to encrypt, hex")
	rootCmd.Flags().StringVar(&adHex, "ad", "", "associated data, hex")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	key, err := hexOrRandom(keyHex, 16)
	if err != nil {
		return fmt.Errorf("parsing --key: %w", err)
	}
	iv, err := hexOrRandom(ivHex, 12)
	if err != nil {
		return fmt.Errorf("parsing --iv: %w", err)
	}
	message, err := hex.DecodeString(messageHex)
	if err != nil {
		return fmt.Errorf("parsing --message: %w", err)
	}
	ad, err := hex.DecodeString(adHex)
	if err != nil {
		return fmt.Errorf("parsing --ad: %w", err)
	}

	parties, err := buildParties()
	if err != nil {
		return fmt.Errorf("building parties: %w", err)
	}

	keyShares, err := rss.SplitBytes(key)
	if err != nil {
		return fmt.Errorf("sharing key: %w", err)
	}
	messageShares, err := rss.SplitBytes(message)
	if err != nil {
		return fmt.Errorf("sharing message: %w", err)
	}

	encResults, err := runOnAllParties(parties, func(p *party.Party, i int) (mpcgcm.Ciphertext, error) {
		return mpcgcm.EncryptWithKey(p, iv, keyShares[i], messageShares[i], ad)
	})
	if err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}

	ciphertext := reconstructBytes(encResults[0].Ciphertext, encResults[1].Ciphertext, encResults[2].Ciphertext)
	tag := reconstructBytes(encResults[0].Tag, encResults[1].Tag, encResults[2].Tag)

	fmt.Printf("key:        %x\n", key)
	fmt.Printf("iv:         %x\n", iv)
	fmt.Printf("ad:         %x\n", ad)
	fmt.Printf("message:    %x\n", message)
	fmt.Printf("ciphertext: %x\n", ciphertext)
	fmt.Printf("tag:        %x\n", tag)

	parties2, err := buildParties()
	if err != nil {
		return fmt.Errorf("building parties for decrypt: %w", err)
	}
	decResults, err := runOnAllParties(parties2, func(p *party.Party, i int) ([]rss.ShareGF8, error) {
		return mpcgcm.DecryptWithKey(p, iv, keyShares[i], ciphertext, tag, ad, tagcheck.SemiHonest)
	})
	if err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}
	decrypted := reconstructBytes(decResults[0], decResults[1], decResults[2])
	fmt.Printf("decrypted:  %x\n", decrypted)

	if string(decrypted) != string(message) {
		return fmt.Errorf("round trip mismatch: got %x want %x", decrypted, message)
	}
	return nil
}

func hexOrRandom(s string, n int) ([]byte, error) {
	if s == "" {
		return randomBytes(n)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, fmt.Errorf("expected %d bytes, got %d", n, len(b))
	}
	return b, nil
}

func buildParties() ([3]*party.Party, error) {
	var out [3]*party.Party
	net := transport.NewLocalNetwork()
	var seedA, seedB, seedC [32]byte
	for _, seed := range [][]byte{seedA[:], seedB[:], seedC[:]} {
		if _, err := rand.Read(seed); err != nil {
			return out, err
		}
	}

	seeds := [3][2][32]byte{
		{seedC, seedA}, // party 0: (prev=C, next=A)
		{seedA, seedB}, // party 1: (prev=A, next=B)
		{seedB, seedC}, // party 2: (prev=B, next=C)
	}
	for i := 0; i < 3; i++ {
		p, err := party.New(i, net.Endpoint(i), seeds[i][0], seeds[i][1])
		if err != nil {
			return out, err
		}
		out[i] = p
	}
	return out, nil
}

// runOnAllParties runs fn concurrently for all three parties and returns
// their results in party-index order.
func runOnAllParties[T any](parties [3]*party.Party, fn func(p *party.Party, i int) (T, error)) ([3]T, error) {
	var out [3]T
	var g errgroup.Group
	for i := 0; i < 3; i++ {
		i := i
		g.Go(func() error {
			result, err := fn(parties[i], i)
			if err != nil {
				return err
			}
			out[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

func reconstructBytes(a, b, c []rss.ShareGF8) []byte {
	out := make([]byte, len(a))
	for i := range out {
		out[i] = rss.ReconstructBytes([3]rss.ShareGF8{a[i], b[i], c[i]})
	}
	return out
}
