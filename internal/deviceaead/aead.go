package deviceaead

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Algorithm selects the device-side authenticated encryption scheme.
// AesGcm128 is the only one this core supports.
type Algorithm int

const AesGcm128 Algorithm = iota

// AesGcmError wraps a failure from the underlying AES-GCM-128
// implementation (cipher or GCM mode setup).
type AesGcmError struct {
	Err error
}

func (e *AesGcmError) Error() string {
	return fmt.Sprintf("deviceaead: AES-GCM-128 error: %v", e.Err)
}

func (e *AesGcmError) Unwrap() error { return e.Err }

// Protect draws a fresh nonce from state, authenticates and encrypts
// data under state's key, binding the ciphertext to userID and the
// nonce via the associated data AAD = userID || nonce, and returns
// nonce || ciphertext || tag. Only AesGcm128 is implemented.
func Protect(userID string, state *State, algorithm Algorithm, data []byte) ([]byte, error) {
	switch algorithm {
	case AesGcm128:
		nonce, err := state.freshNonce()
		if err != nil {
			return nil, err
		}

		block, err := aes.NewCipher(state.key[:])
		if err != nil {
			return nil, &AesGcmError{Err: err}
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, &AesGcmError{Err: err}
		}

		aad := buildAAD(userID, nonce)
		sealed := gcm.Seal(nil, nonce[:], data, aad)

		out := make([]byte, 0, nonceSizeBytes+len(sealed))
		out = append(out, nonce[:]...)
		out = append(out, sealed...)
		return out, nil
	default:
		return nil, fmt.Errorf("deviceaead: unsupported algorithm %d", algorithm)
	}
}

// buildAAD constructs the associated data binding a record to its
// user id and nonce: AAD = userID || nonce.
func buildAAD(userID string, nonce [nonceSizeBytes]byte) []byte {
	ad := make([]byte, 0, len(userID)+nonceSizeBytes)
	ad = append(ad, []byte(userID)...)
	ad = append(ad, nonce[:]...)
	return ad
}
