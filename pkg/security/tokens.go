package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

const (
	// Session tokens stay valid for 30 days, after which the
	// client has to log in again.
	sessionTokenTTL = time.Hour * 24 * 30

	// 32 random bytes, so 256 bits of entropy per reset token.
	resetTokenSize = 32

	// A reset link is only usable for 10 minutes.
	ResetTokenTTL = time.Minute * 10
)

var (
	ErrTokenInvalid = errors.New("session token invalid")
	ErrTokenExpired = errors.New("session token expired")
)

// MakeSessionToken mints a signed stateless token binding the given
// user ID. Nothing is stored server-side, ParseSessionToken alone
// decides validity.
func MakeSessionToken(userID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(sessionTokenTTL).Unix(),
	})

	return t.SignedString([]byte(viper.GetString("jwt.secret")))
}

// ParseSessionToken verifies the signature and expiry of a session
// token and returns the user ID it was issued for.
func ParseSessionToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return []byte(viper.GetString("jwt.secret")), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}

		return "", ErrTokenInvalid
	}

	if !token.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrTokenInvalid
	}

	return userID, nil
}

// MakeResetToken generates a fresh password reset token. The plaintext
// goes out via mail only, the database sees just the hash.
func MakeResetToken() (plaintext, hash string, err error) {
	b := make([]byte, resetTokenSize)

	_, err = rand.Read(b)
	if err != nil {
		return "", "", err
	}

	plaintext = hex.EncodeToString(b)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken is the deterministic one-way transform used both when
// a token is issued and when a presented one is looked up.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
