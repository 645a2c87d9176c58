package models

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/datamarket/internal/common"
	"github.com/filecoin-project/go-address"
	"golang.org/x/crypto/sha3"
)

// NormalizeAddress validates an account identity and returns its canonical
// form. 0x-prefixed EVM addresses are returned in EIP-55 checksum case,
// Filecoin addresses in their string encoding.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", common.ErrInvalidAddress)
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return checksumEVM(s[2:])
	}

	a, err := address.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidAddress, err)
	}
	return a.String(), nil
}

// CanonicalIdentity returns the canonical form of s when it parses as an
// address and the trimmed string otherwise, so identities issued by other
// wallets pass through unchanged. Only an empty identity is rejected.
func CanonicalIdentity(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", common.ErrInvalidAddress)
	}
	if n, err := NormalizeAddress(s); err == nil {
		return n, nil
	}
	return s, nil
}

// SameAddress reports whether a and b name the same account.
func SameAddress(a, b string) bool {
	na, err := NormalizeAddress(a)
	if err != nil {
		return strings.EqualFold(a, b)
	}
	nb, err := NormalizeAddress(b)
	if err != nil {
		return false
	}
	return na == nb
}

func checksumEVM(h string) (string, error) {
	if len(h) != 40 {
		return "", fmt.Errorf("%w: want 20 bytes, got %d hex chars", common.ErrInvalidAddress, len(h))
	}
	lower := strings.ToLower(h)
	if _, err := hex.DecodeString(lower); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidAddress, err)
	}

	return "0x" + eip55(lower), nil
}

// eip55 applies checksum casing to 40 lowercase hex characters.
func eip55(lower string) string {
	k := sha3.NewLegacyKeccak256()
	k.Write([]byte(lower))
	sum := k.Sum(nil)

	out := []byte(lower)
	for i := range out {
		if out[i] < 'a' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] -= 'a' - 'A'
		}
	}
	return string(out)
}

// AddressFromPublicKey derives an EVM-style address from raw key bytes:
// the last 20 bytes of their keccak256 hash.
func AddressFromPublicKey(pub []byte) string {
	k := sha3.NewLegacyKeccak256()
	k.Write(pub)
	sum := k.Sum(nil)
	return "0x" + eip55(hex.EncodeToString(sum[12:]))
}
