package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-000"

func TestIssuer_IssueAndParse(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)

	token, err := issuer.Issue(" b@x.com ")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", claims.Email)
	assert.Equal(t, "b@x.com", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_IssueRequiresEmail(t *testing.T) {
	_, err := NewIssuer(testSecret, time.Hour).Issue("   ")
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestIssuer_ParseRejects(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)

	expired := NewIssuer(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue("b@x.com")
	require.NoError(t, err)

	otherKey, err := NewIssuer("some-other-secret-entirely-0000000", time.Hour).Issue("b@x.com")
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "b@x.com"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Email:            "b@x.com",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"Garbage", "not-a-token"},
		{"Empty", ""},
		{"Expired", expiredToken},
		{"Wrong key", otherKey},
		{"Missing expiry", noExp},
		{"Missing email", noEmail},
		{"Unexpected algorithm", hs512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
