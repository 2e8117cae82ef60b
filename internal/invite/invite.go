// Package invite mints and checks session invitation tokens.
//
// The ledger itself never sees a token, only its SHA-256: the admin installs
// the hash with set_session_token_hash and a joiner presents the raw token to
// join_session_as_member. The token format is a gateway concern; we use a
// signed JWT so a leaked token expires on its own and names the session it
// was minted for.
package invite

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for expired or malformed tokens.
var ErrInvalidToken = errors.New("invalid or expired invitation token")

// Claims are the invitation's JWT claims.
type Claims struct {
	SessionID uint64 `json:"session_id"`
	jwt.RegisteredClaims
}

// Manager mints and validates invitation tokens.
type Manager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewManager creates a Manager. secretKey should be a strong random string;
// tokenDuration is how long minted invitations stay valid.
func NewManager(secretKey string, tokenDuration time.Duration) *Manager {
	return &Manager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate mints a token for the session and returns it with its SHA-256,
// which is what the admin installs on the session record.
func (m *Manager) Generate(sessionID uint64) (token string, hash [32]byte, err error) {
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(sessionID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", hash, fmt.Errorf("failed to sign invitation token: %w", err)
	}
	return token, Hash(token), nil
}

// Validate parses and verifies a token, returning its claims.
func (m *Manager) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Hash returns the SHA-256 of a token, the value the ledger stores.
func Hash(token string) [32]byte {
	return sha256.Sum256([]byte(token))
}
