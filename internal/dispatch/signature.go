package dispatch

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

// VerifySignature checks the scheduler's signature header against the
// current and next signing keys. The header is a JWT whose body claim
// holds the base64url sha256 of the request body; the scheduler rotates
// keys, so either key may have signed it.
func VerifySignature(signature string, body []byte, currentKey, nextKey string) error {
	if signature == "" {
		return apperrors.ErrInvalidSignature
	}

	if err := verifyWithKey(signature, body, currentKey); err == nil {
		return nil
	}
	if err := verifyWithKey(signature, body, nextKey); err == nil {
		return nil
	}

	return apperrors.ErrInvalidSignature
}

func verifyWithKey(signature string, body []byte, key string) error {
	if key == "" {
		return apperrors.ErrInvalidSignature
	}

	token, err := jwt.Parse(signature, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(key), nil
	})
	if err != nil || !token.Valid {
		return apperrors.ErrInvalidSignature
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return apperrors.ErrInvalidSignature
	}

	// The body claim binds the signature to this exact request body
	claimed, ok := claims["body"].(string)
	if !ok {
		return apperrors.ErrInvalidSignature
	}

	sum := sha256.Sum256(body)
	if claimed != base64.RawURLEncoding.EncodeToString(sum[:]) {
		return apperrors.ErrInvalidSignature
	}

	return nil
}
