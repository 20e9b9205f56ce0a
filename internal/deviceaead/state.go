// Package deviceaead implements the device-side nonce engine and
// authenticated encryption entry point: a single symmetric key, a
// 96-bit little-endian nonce counter that increments on every use, and
// exhaustion once all 2^96 values have been consumed.
package deviceaead

import (
	"errors"
	"math/big"
)

const nonceSizeBytes = 12

// maxNonceCount is 2^96, the number of distinct 96-bit nonce values.
var maxNonceCount = new(big.Int).Lsh(big.NewInt(1), 96)

// ErrRekeyRequired is returned once a device has exhausted every nonce
// value available under its current key; the caller must rotate the key
// (key distribution and rekeying are outside this core's scope).
var ErrRekeyRequired = errors.New("deviceaead: nonce space exhausted, rekey required")

// State is one device's evolving nonce counter and its current key. It is
// not safe for concurrent use; a device protects data sequentially.
type State struct {
	key        [16]byte
	nonce      [nonceSizeBytes]byte
	usedNonces *big.Int
}

// NewState creates a fresh device state with the given starting nonce and
// key. Persisting this state across restarts (so a nonce is never reused
// under the same key) is the caller's responsibility.
func NewState(startNonce [nonceSizeBytes]byte, key [16]byte) *State {
	return &State{
		key:        key,
		nonce:      startNonce,
		usedNonces: big.NewInt(0),
	}
}

// UsedNonces returns the number of nonces consumed so far, for
// persistence by internal/devicestore.
func (s *State) UsedNonces() *big.Int {
	return new(big.Int).Set(s.usedNonces)
}

// Nonce returns the current (most recently issued) nonce value.
func (s *State) Nonce() [nonceSizeBytes]byte {
	return s.nonce
}

// RestoreUsedNonces sets the used-nonce counter directly; used by
// internal/devicestore when reloading a persisted state.
func (s *State) RestoreUsedNonces(n *big.Int) {
	s.usedNonces = new(big.Int).Set(n)
}

// freshNonce advances the counter and returns the new (post-increment)
// nonce value, or ErrRekeyRequired if the nonce space is exhausted. Once
// exhausted, every subsequent call also fails.
func (s *State) freshNonce() ([nonceSizeBytes]byte, error) {
	next := new(big.Int).Add(s.usedNonces, big.NewInt(1))
	if next.Cmp(maxNonceCount) > 0 {
		return [nonceSizeBytes]byte{}, ErrRekeyRequired
	}
	s.usedNonces = next

	value := nonceToInt(s.nonce)
	value.Add(value, big.NewInt(1))
	if value.Cmp(maxNonceCount) >= 0 {
		value.SetInt64(0)
	}
	s.nonce = intToNonce(value)
	return s.nonce, nil
}

// nonceToInt interprets a 12-byte nonce as a little-endian unsigned
// integer, matching the device firmware's convention.
func nonceToInt(n [nonceSizeBytes]byte) *big.Int {
	be := make([]byte, nonceSizeBytes)
	for i := 0; i < nonceSizeBytes; i++ {
		be[i] = n[nonceSizeBytes-1-i]
	}
	return new(big.Int).SetBytes(be)
}

func intToNonce(v *big.Int) [nonceSizeBytes]byte {
	be := v.Bytes()
	var out [nonceSizeBytes]byte
	for i := 0; i < len(be) && i < nonceSizeBytes; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}
