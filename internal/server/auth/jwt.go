// Package auth issues and verifies the HS256 API tokens that carry
// go-jsonrpc permissions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/datamarket/internal/common"
)

// Claims is the token payload: standard claims plus the permission list.
type Claims struct {
	jwt.RegisteredClaims
	Allow []auth.Permission `json:"Allow"`
}

// GenerateToken signs a token granting perms that expires after validity.
func GenerateToken(perms []auth.Permission, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Allow: perms,
	})

	return token.SignedString(secretKey)
}

// PermissionsFromToken validates tokenString and returns the permissions it
// grants. Expired tokens yield common.ErrTokenExpired, any other failure
// common.ErrInvalidToken.
func PermissionsFromToken(tokenString string, secretKey []byte) ([]auth.Permission, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims.Allow, nil
}

// Issuer binds a secret and a validity to the two functions the RPC layer
// needs: Verify for auth.Handler and New for Market.AuthNew.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(secret string, validity time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), validity: validity}
}

func (i *Issuer) Verify(ctx context.Context, token string) ([]auth.Permission, error) {
	return PermissionsFromToken(token, i.secret)
}

func (i *Issuer) New(ctx context.Context, perms []auth.Permission) (string, error) {
	return GenerateToken(perms, i.secret, i.validity)
}
