package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidSubject = errors.New("invalid token subject")
)

const issuer = "eventhub"

// TokenSigner issues and checks HS256 session tokens.
type TokenSigner struct {
	secret    []byte
	ttl       time.Duration
	clockSkew time.Duration
}

// NewTokenSigner creates a signer keyed by secret.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl, clockSkew: 30 * time.Second}
}

// TTL returns the lifetime of issued tokens.
func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// SessionClaims are the claims carried by a session token. Subject is the
// user record id.
type SessionClaims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

// Sign issues a token for userID valid from now for the signer's TTL.
func (s *TokenSigner) Sign(userID, email string, now time.Time) (string, error) {
	if userID == "" {
		return "", ErrInvalidSubject
	}
	claims := SessionClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			NotBefore: now.Add(-s.clockSkew).Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates token and returns its claims.
func (s *TokenSigner) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || !claims.VerifyIssuer(issuer, true) {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidSubject
	}
	return claims, nil
}
