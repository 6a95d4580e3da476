package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  "profile-1",
		"role": "customer",
		"tv":   3,
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

func TestParseAccessToken_ValidToken(t *testing.T) {
	raw := signToken(t, testSecret, validClaims())

	claims, err := ParseAccessToken(testSecret, raw)

	assert.NoError(t, err)
	assert.Equal(t, "profile-1", claims.ProfileID)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	raw := signToken(t, "other-secret", validClaims())

	_, err := ParseAccessToken(testSecret, raw)

	assert.Error(t, err)
}

func TestParseAccessToken_Expired(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	raw := signToken(t, testSecret, claims)

	_, err := ParseAccessToken(testSecret, raw)

	assert.Error(t, err)
}

func TestParseAccessToken_MissingSub(t *testing.T) {
	claims := validClaims()
	delete(claims, "sub")
	raw := signToken(t, testSecret, claims)

	_, err := ParseAccessToken(testSecret, raw)

	assert.Error(t, err)
}

// HS256以外（none等）は拒否
func TestParseAccessToken_UnsignedRejected(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = ParseAccessToken(testSecret, raw)

	assert.Error(t, err)
}

func TestParseAccessToken_Garbage(t *testing.T) {
	_, err := ParseAccessToken(testSecret, "not.a.jwt")

	assert.Error(t, err)
}
