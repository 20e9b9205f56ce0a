// Package devicewire implements the on-the-wire layout of a device
// protected record: nonce || ciphertext || tag, and the associated-data
// convention AAD = userID || nonce that binds a record to the user it
// was produced for.
package devicewire

import "fmt"

const (
	NonceSize = 12
	TagSize   = 16
)

// SplitRecord parses a device-protected record into its nonce,
// ciphertext and tag components.
func SplitRecord(record []byte) (nonce [NonceSize]byte, ciphertext, tag []byte, err error) {
	if len(record) < NonceSize+TagSize {
		return nonce, nil, nil, fmt.Errorf("devicewire: record too short: %d bytes", len(record))
	}
	copy(nonce[:], record[:NonceSize])
	body := record[NonceSize:]
	tagStart := len(body) - TagSize
	ciphertext = body[:tagStart]
	tag = body[tagStart:]
	return nonce, ciphertext, tag, nil
}

// BuildAAD constructs the associated data a record was authenticated
// under: userID || nonce.
func BuildAAD(userID string, nonce [NonceSize]byte) []byte {
	ad := make([]byte, 0, len(userID)+NonceSize)
	ad = append(ad, []byte(userID)...)
	ad = append(ad, nonce[:]...)
	return ad
}
