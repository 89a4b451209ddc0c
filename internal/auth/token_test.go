package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-signing-secret")

func testPrincipal() Principal {
	return Principal{
		UserID: "user-123",
		Email:  "ana@fund.example",
		Role:   RoleAnalyst,
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(testPrincipal(), testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := VerifyToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", principal.UserID)
	assert.Equal(t, "ana@fund.example", principal.Email)
	assert.Equal(t, RoleAnalyst, principal.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testPrincipal(), testSecret, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(token, []byte("some-other-secret"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := IssueToken(testPrincipal(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, testSecret)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenMalformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := VerifyToken(tc.token, testSecret)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyTokenRejectsUnsignedAlgorithm(t *testing.T) {
	// A token signed with "none" must not pass even with a valid payload.
	claims := &Claims{
		UserID: "user-123",
		Email:  "ana@fund.example",
		Role:   RoleAnalyst,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = VerifyToken(token, testSecret)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenTampered(t *testing.T) {
	token, err := IssueToken(testPrincipal(), testSecret, time.Hour)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	_, err = VerifyToken(string(tampered), testSecret)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueTokenSetsExpiry(t *testing.T) {
	token, err := IssueToken(testPrincipal(), testSecret, 7*24*time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return testSecret, nil
	})
	require.NoError(t, err)

	claims, ok := parsed.Claims.(*Claims)
	require.True(t, ok)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 7*24*time.Hour, ttl)
}
