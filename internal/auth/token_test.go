package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/stretchr/testify/require"
)

func testSession(ttl time.Duration) models.Session {
	now := time.Now()
	return models.Session{ID: "6f1c2f8e-1111-4c1a-9d3e-000000000001", AccountID: 42, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner([]byte("secret"))
	token, err := s.Sign(testSession(time.Hour))
	require.NoError(t, err)

	sessionID, accountID, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "6f1c2f8e-1111-4c1a-9d3e-000000000001", sessionID)
	require.EqualValues(t, 42, accountID)
}

func TestSigner_RejectsForeignKey(t *testing.T) {
	token, err := NewSigner([]byte("other")).Sign(testSession(time.Hour))
	require.NoError(t, err)

	_, _, err = NewSigner([]byte("secret")).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsExpired(t *testing.T) {
	s := NewSigner([]byte("secret"))
	token, err := s.Sign(testSession(-time.Minute))
	require.NoError(t, err)

	_, _, err = s.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{ID: "x", Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = NewSigner([]byte("secret")).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsGarbage(t *testing.T) {
	_, _, err := NewSigner([]byte("secret")).Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
