package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/weight-tracker-be/internal/models"
)

// ErrInvalidToken covers every way a session token can fail verification.
var ErrInvalidToken = errors.New("invalid session token")

// Claims defines the session token claims. The token only names a session;
// the session itself lives in the database.
type Claims struct {
	jwt.RegisteredClaims
}

// Signer issues and verifies session tokens with HMAC-SHA256.
type Signer struct {
	key []byte
}

// NewSigner creates a Signer for the given secret.
func NewSigner(key []byte) *Signer {
	return &Signer{key: key}
}

// Sign creates the token carried by the session cookie.
func (s *Signer) Sign(session models.Session) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   strconv.FormatInt(session.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the session id and the
// account id the token was issued for.
func (s *Signer) Verify(tokenStr string) (sessionID string, accountID int64, err error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return "", 0, ErrInvalidToken
	}
	accountID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims.ID, accountID, nil
}
