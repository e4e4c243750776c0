package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService mints and verifies session tokens. Tokens are stateless and
// unrevocable before expiry; there is no server side session table.
type TokenService interface {
	Issue(identity Identity) (string, *SessionClaims, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// TokenServiceImpl implements the TokenService interface using HS256 and a
// process wide secret, read once at construction.
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, audience []string, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		audience:   jwt.ClaimStrings(audience),
		logger:     logger,
	}
}

// Issue builds SessionClaims for the identity with expiry now + TTL and
// returns the signed token alongside the claims.
func (ts *TokenServiceImpl) Issue(identity Identity) (string, *SessionClaims, error) {
	if identity == nil {
		return "", nil, errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		Username: identity.Username(),
		UserRole: identity.Role(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signed, claims, nil
}

// Validate parses and verifies a token string. A bad signature or shape
// yields ErrTokenMalformed; a well signed token past its window yields
// ErrTokenExpired, never the malformed error.
func (ts *TokenServiceImpl) Validate(tokenString string) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if claims.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}
