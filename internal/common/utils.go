package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates size random bytes and returns them hex encoded,
// so the resulting string is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewTransferID returns a fresh opaque payment transfer identifier.
func NewTransferID() (string, error) {
	s, err := MakeRandHexString(12)
	if err != nil {
		return "", err
	}
	return TransferIDPrefix + s, nil
}
