// Package mpcgcm implements the three-party secret-shared AES-GCM-128
// pipeline: deriving the GHASH key and keystream from a single AES
// black-box call, XORing the keystream with the message, running GHASH
// over the associated data and ciphertext, and masking the result into
// the final tag.
package mpcgcm

import (
	"github.com/mozaik-sbo/libmozaik-go/internal/ghash"
	"github.com/mozaik-sbo/libmozaik-go/internal/party"
	"github.com/mozaik-sbo/libmozaik-go/internal/rss"
)

const (
	messageMaxBytes = (uint64(1) << 36) - 32
	adMaxBytes      = (uint64(1) << 61) - 1
)

// Blackbox is the combined contract the pipeline needs from a concrete
// three-party engine: AES for counter-mode keystream generation, GF(128)
// for GHASH and the tag check.
type Blackbox interface {
	party.AESBlackBox
	party.GF128BlackBox
}

// Ciphertext is a secret-shared AES-GCM-128 ciphertext: the encrypted
// message and its authentication tag.
type Ciphertext struct {
	Ciphertext []rss.ShareGF8
	Tag        []rss.ShareGF8
}

// TagCheckFunc verifies a secret-shared computed tag against a public
// expected tag, interactively. internal/tagcheck.SemiHonest is the one
// implementation this repository ships; callers may supply another.
type TagCheckFunc func(bb Blackbox, expectedTag []byte, computedTag []rss.ShareGF8) (bool, error)

func blockCount(n int) int {
	if n%16 != 0 {
		return n/16 + 1
	}
	return n / 16
}

func validateCommon(ivLen int, messageLen, adLen uint64) error {
	if ivLen != 12 {
		return invalidParameters("IV must be 96 bits (12 bytes)")
	}
	if messageLen >= messageMaxBytes {
		return invalidParameters("message too large: maximum length is 2^36-32 bytes")
	}
	if adLen >= adMaxBytes {
		return invalidParameters("associated data too large: maximum length is 2^61-1 bytes")
	}
	return nil
}

// EncryptWithKey computes the key schedule from a shared key and then
// encrypts.
func EncryptWithKey(bb Blackbox, iv []byte, key []rss.ShareGF8, message []rss.ShareGF8, associatedData []byte) (Ciphertext, error) {
	if len(key) != 16 {
		return Ciphertext{}, invalidParameters("key must be 128 bits (16 bytes) for AES-GCM-128")
	}
	ks, err := bb.AES128KeySchedule(key)
	if err != nil {
		return Ciphertext{}, ioError("computing key schedule", err)
	}
	return EncryptWithSchedule(bb, iv, ks, message, associatedData)
}

// EncryptWithSchedule runs the pipeline with an already-expanded key
// schedule.
func EncryptWithSchedule(bb Blackbox, iv []byte, ks party.KeySchedule, message []rss.ShareGF8, associatedData []byte) (Ciphertext, error) {
	if err := validateCommon(len(iv), uint64(len(message)), uint64(len(associatedData))); err != nil {
		return Ciphertext{}, err
	}
	nBlocks := blockCount(len(message))

	counterOutput, err := deriveCounterOutput(bb, iv, nBlocks, ks)
	if err != nil {
		return Ciphertext{}, err
	}
	ghashKey := counterOutput[:16]
	ghashMask := counterOutput[16:32]
	keystream := counterOutput[32:]

	ciphertext := make([]rss.ShareGF8, len(message))
	for i := range message {
		ciphertext[i] = keystream[i].Add(message[i])
	}

	tag, err := ghash.Compute(bb, ghashKey, associatedData, ciphertext)
	if err != nil {
		return Ciphertext{}, ioError("computing GHASH", err)
	}
	for i := range tag {
		tag[i] = tag[i].Add(ghashMask[i])
	}

	return Ciphertext{Ciphertext: ciphertext, Tag: tag}, nil
}

// DecryptWithKey computes the key schedule from a shared key and then
// decrypts, checking the tag with tagCheck.
func DecryptWithKey(bb Blackbox, iv []byte, key []rss.ShareGF8, ciphertext, tag, associatedData []byte, tagCheck TagCheckFunc) ([]rss.ShareGF8, error) {
	if len(key) != 16 {
		return nil, invalidParameters("key must be 128 bits (16 bytes) for AES-GCM-128")
	}
	ks, err := bb.AES128KeySchedule(key)
	if err != nil {
		return nil, ioError("computing key schedule", err)
	}
	return DecryptWithSchedule(bb, iv, ks, ciphertext, tag, associatedData, tagCheck)
}

// DecryptWithSchedule runs the decryption pipeline with an already
// expanded key schedule. ciphertext, tag and associatedData are public
// bytes (the caller already holds the record off the wire); the returned
// message is secret-shared.
func DecryptWithSchedule(bb Blackbox, iv []byte, ks party.KeySchedule, ciphertext, tag, associatedData []byte, tagCheck TagCheckFunc) ([]rss.ShareGF8, error) {
	if err := validateCommon(len(iv), uint64(len(ciphertext)), uint64(len(associatedData))); err != nil {
		return nil, err
	}
	if len(tag) != 16 {
		return nil, invalidParameters("tag must be 128 bits (16 bytes)")
	}
	nBlocks := blockCount(len(ciphertext))

	counterOutput, err := deriveCounterOutput(bb, iv, nBlocks, ks)
	if err != nil {
		return nil, err
	}
	ghashKey := counterOutput[:16]
	ghashMask := counterOutput[16:32]
	keystream := counterOutput[32:]

	ciphertextShares := bb.ConstantBytes(ciphertext)
	message := make([]rss.ShareGF8, len(ciphertext))
	for i := range ciphertextShares {
		message[i] = keystream[i].Add(ciphertextShares[i])
	}

	computedTag, err := ghash.Compute(bb, ghashKey, associatedData, ciphertextShares)
	if err != nil {
		return nil, ioError("computing GHASH", err)
	}
	for i := range computedTag {
		computedTag[i] = computedTag[i].Add(ghashMask[i])
	}

	ok, err := tagCheck(bb, tag, computedTag)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, operationFailed("tag check failed")
	}
	return message, nil
}
