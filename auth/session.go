package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/meinhoongagan/wellness-portal/models"
)

// Session is the authenticated state of one request. It is created on login
// or remember-token restore and ends on logout or token expiry.
type Session struct {
	UserID    uint
	Role      models.Role
	Name      string
	TokenID   string
	ExpiresAt time.Time
	// Version is the user's session version at issue; bumping the stored
	// version ends every older session.
	Version int
}

func (s *Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// Revoker remembers session tokens that were logged out before expiring.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Secret is the HS256 signing key.
func (i *TokenIssuer) Secret() []byte { return i.secret }

func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue signs a new session token for u.
func (i *TokenIssuer) Issue(u *models.User) (string, *Session, error) {
	now := i.now()
	sess := &Session{
		UserID:    u.ID,
		Role:      u.Role,
		Name:      u.Name,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(i.ttl),
		Version:   u.SessionVersion,
	}

	claims := jwt.MapClaims{
		"id":   u.ID,
		"sub":  strconv.FormatUint(uint64(u.ID), 10),
		"role": string(u.Role),
		"name": u.Name,
		"jti":  sess.TokenID,
		"ver":  sess.Version,
		"iat":  now.Unix(),
		"exp":  sess.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return signed, sess, nil
}

// Parse verifies a session token and returns its session.
func (i *TokenIssuer) Parse(token string) (*Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return SessionFromClaims(claims)
}

// SessionFromClaims rebuilds a session from verified token claims.
func SessionFromClaims(claims jwt.MapClaims) (*Session, error) {
	userID, err := extractUserID(claims)
	if err != nil {
		return nil, err
	}
	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		return nil, fmt.Errorf("invalid role in token")
	}
	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return nil, fmt.Errorf("no token id in claims")
	}
	name, _ := claims["name"].(string)

	sess := &Session{UserID: userID, Role: models.Role(role), Name: name, TokenID: tokenID}
	if ver, ok := claims["ver"].(float64); ok {
		sess.Version = int(ver)
	}
	if exp, ok := claims["exp"].(float64); ok {
		sess.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return sess, nil
}

// extractUserID handles the formats a numeric id takes after JSON decoding.
func extractUserID(claims jwt.MapClaims) (uint, error) {
	switch v := claims["id"].(type) {
	case float64:
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse ID string: %v", err)
		}
		return uint(parsed), nil
	case nil:
		return 0, fmt.Errorf("no ID found in claims")
	default:
		return 0, fmt.Errorf("unsupported ID type: %T", v)
	}
}
