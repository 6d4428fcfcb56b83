package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/shared"
)

// Claims is the signed assertion carried inside a token.
type Claims struct {
	Email     string      `json:"email,omitempty"`
	Role      shared.Role `json:"role"`
	TenantID  *uuid.UUID  `json:"tenant_id,omitempty"`
	StudentID string      `json:"student_id,omitempty"`
	StaffID   string      `json:"staff_id,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the token subject.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService issues and verifies HS256 tokens. The signing secret is
// process-wide state loaded once at startup; rotating it invalidates all
// outstanding tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService constructs a TokenService.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL exposes the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a time-limited token for the given subject.
func (s *TokenService) Issue(subject uuid.UUID, claims Claims) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject.String(),
		Issuer:    s.issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Expiry, malformed input and
// signature mismatch surface as distinct wrapped causes under the shared
// token sentinels.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: malformed: %v", shared.ErrTokenInvalid, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: signature: %v", shared.ErrTokenInvalid, err)
		default:
			return nil, fmt.Errorf("%w: %v", shared.ErrTokenInvalid, err)
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, shared.ErrTokenInvalid
	}
	return claims, nil
}
