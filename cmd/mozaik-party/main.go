// mozaik-party runs one of the three protocol parties as a long-lived
// process, connected to its peers over a websocket transport, and
// performs a single AES-GCM-128 encrypt-then-decrypt round trip using
// this party's shares of a key and message.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mozaik-sbo/libmozaik-go/internal/config"
	"github.com/mozaik-sbo/libmozaik-go/internal/mpcgcm"
	"github.com/mozaik-sbo/libmozaik-go/internal/party"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
	"github.com/mozaik-sbo/libmozaik-go/internal/tagcheck"
	"github.com/mozaik-sbo/libmozaik-go/internal/transport"
)

var (
	peersFile string

	ivHex           string
	adHex           string
	keyShareSi      string
	keyShareSii     string
	messageShareSi  string
	messageShareSii string

	rootCmd = &cobra.Command{
		Use:   "mozaik-party",
		Short: "Run one party of the three-party AES-GCM-128 protocol",
		RunE:  runParty,
	}
)

func init() {
	rootCmd.Flags().StringVar(&peersFile, "peers", "", "party YAML configuration file (required)")
	rootCmd.Flags().StringVar(&ivHex, "iv", "", "12-byte IV, hex (required)")
	rootCmd.Flags().StringVar(&adHex, "ad", "", "associated data, hex")
	rootCmd.Flags().StringVar(&keyShareSi, "key-share-si", "", "this party's s_i share of the key, hex (required)")
	rootCmd.Flags().StringVar(&keyShareSii, "key-share-sii", "", "this party's s_ii share of the key, hex (required)")
	rootCmd.Flags().StringVar(&messageShareSi, "message-share-si", "", "this party's s_i share of the message, hex (required)")
	rootCmd.Flags().StringVar(&messageShareSii, "message-share-sii", "", "this party's s_ii share of the message, hex (required)")
	rootCmd.MarkFlagRequired("peers")
	rootCmd.MarkFlagRequired("iv")
	rootCmd.MarkFlagRequired("key-share-si")
	rootCmd.MarkFlagRequired("key-share-sii")
	rootCmd.MarkFlagRequired("message-share-si")
	rootCmd.MarkFlagRequired("message-share-sii")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func decodeShare(siHex, siiHex string) ([]rss.ShareGF8, error) {
	si, err := hex.DecodeString(siHex)
	if err != nil {
		return nil, fmt.Errorf("decoding s_i: %w", err)
	}
	sii, err := hex.DecodeString(siiHex)
	if err != nil {
		return nil, fmt.Errorf("decoding s_ii: %w", err)
	}
	if len(si) != len(sii) {
		return nil, fmt.Errorf("s_i and s_ii must be the same length: %d vs %d", len(si), len(sii))
	}
	out := make([]rss.ShareGF8, len(si))
	for i := range out {
		out[i] = rss.ShareGF8{Si: si[i], Sii: sii[i]}
	}
	return out, nil
}

func runParty(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPartyConfig(peersFile)
	if err != nil {
		return err
	}
	id := cfg.Party.ID
	prevID := (id + 2) % 3
	nextID := (id + 1) % 3

	seedPrev, err := cfg.SeedFor(prevID)
	if err != nil {
		return err
	}
	seedNext, err := cfg.SeedFor(nextID)
	if err != nil {
		return err
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return fmt.Errorf("parsing --iv: %w", err)
	}
	ad, err := hex.DecodeString(adHex)
	if err != nil {
		return fmt.Errorf("parsing --ad: %w", err)
	}
	keyShare, err := decodeShare(keyShareSi, keyShareSii)
	if err != nil {
		return fmt.Errorf("parsing key share: %w", err)
	}
	messageShare, err := decodeShare(messageShareSi, messageShareSii)
	if err != nil {
		return fmt.Errorf("parsing message share: %w", err)
	}

	log.Printf("mozaik-party %d: dialing peers...", id)
	net, err := transport.DialPeers(id, cfg.PeerAddrs())
	if err != nil {
		return fmt.Errorf("connecting to peers: %w", err)
	}
	defer net.Close()

	p, err := party.New(id, net.Endpoint(id), seedPrev, seedNext)
	if err != nil {
		return fmt.Errorf("building party: %w", err)
	}

	log.Printf("mozaik-party %d: encrypting", id)
	ct, err := mpcgcm.EncryptWithKey(p, iv, keyShare, messageShare, ad)
	if err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}
	fmt.Printf("ciphertext share (s_i||s_ii): %x\n", shareBytes(ct.Ciphertext))
	fmt.Printf("tag share (s_i||s_ii):        %x\n", shareBytes(ct.Tag))

	log.Printf("mozaik-party %d: encrypt complete", id)

	openCiphertext, err := p.OutputRoundBytes(ct.Ciphertext)
	if err != nil {
		return fmt.Errorf("opening ciphertext: %w", err)
	}
	openTag, err := p.OutputRoundBytes(ct.Tag)
	if err != nil {
		return fmt.Errorf("opening tag: %w", err)
	}

	decrypted, err := mpcgcm.DecryptWithKey(p, iv, keyShare, openCiphertext, openTag, ad, tagcheck.SemiHonest)
	if err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}
	fmt.Printf("decrypted share (s_i||s_ii):  %x\n", shareBytes(decrypted))
	log.Printf("mozaik-party %d: round trip complete", id)
	return nil
}

func shareBytes(shares []rss.ShareGF8) []byte {
	out := make([]byte, 0, len(shares)*2)
	for _, s := range shares {
		out = append(out, s.Si)
	}
	for _, s := range shares {
		out = append(out, s.Sii)
	}
	return out
}
