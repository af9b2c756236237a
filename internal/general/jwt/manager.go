package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is an admin API caller's access level.
type Role string

const (
	RoleOperator Role = "OPERATOR"
	RoleViewer   Role = "VIEWER"
)

// Claims are the JWT claims minted for admin API access.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrMalformedHeader   = errors.New("malformed authorization header")
	ErrInvalidToken      = errors.New("invalid or expired token")
)

// Manager issues and validates admin API bearer tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a Manager signing with secret (HS256) and issuing
// tokens valid for ttl.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// IssueOperatorToken mints a token for subject with role.
func (m *Manager) IssueOperatorToken(subject string, role Role) (string, Claims, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ParseAndValidate parses and validates a signed token string.
func (m *Manager) ParseAndValidate(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// FromAuthorization extracts a bearer token from an Authorization header
// value ("Bearer <token>").
func FromAuthorization(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedHeader
	}
	return strings.TrimSpace(parts[1]), nil
}

// RoleAllowed reports whether claims.Role is one of allowed.
func RoleAllowed(claims *Claims, allowed ...Role) bool {
	for _, r := range allowed {
		if claims.Role == r {
			return true
		}
	}
	return false
}
