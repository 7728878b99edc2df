// Package auth implements the authentication core of the dueDash server:
// stateless HS256 access tokens, password hashing, and the session guard
// shared by the HTTP and realtime transports.
package auth

import (
	"errors"
	"time"

	"github.com/duedash/duedash/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the value of the "type" claim carried by access tokens.
// It distinguishes them from any future token kind (refresh, invite, ...).
const TokenTypeAccess = "access"

// Claims is the claim set minted into access tokens: the registered claims
// carry sub/iat/exp, TokenType carries the type tag.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// GenerateToken issues a signed access token for the given subject, valid
// for validityDuration from now.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		TokenType: TokenTypeAccess,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies tokenString and returns its subject.
//
// Checks run in a fixed order so the caller gets the most precise error:
// signature/structure (common.ErrTokenMalformed), then expiry
// (common.ErrTokenExpired), then the type tag (common.ErrTokenWrongType),
// then the subject claim (common.ErrTokenMissingSubject).
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		default:
			return "", common.ErrTokenMalformed
		}
	}

	if !token.Valid {
		return "", common.ErrTokenMalformed
	}

	if claims.TokenType != TokenTypeAccess {
		return "", common.ErrTokenWrongType
	}

	if claims.Subject == "" {
		return "", common.ErrTokenMissingSubject
	}

	return claims.Subject, nil
}
