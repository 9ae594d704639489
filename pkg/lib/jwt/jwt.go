package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodgram/pkg/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = gojwt.SigningMethodHS256

var ErrInvalidToken = errors.New("invalid token")

// Claims is the typed access token issued on login.
type Claims struct {
	gojwt.RegisteredClaims
}

// UserID parses the subject back into the numeric user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// Mint issues a signed token for userID valid for cfg.TTL from now.
func Mint(cfg config.JWTConfig, now time.Time, userID int64) (string, *Claims, error) {
	if cfg.Secret == "" {
		return "", nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.TTL <= 0 {
		return "", nil, fmt.Errorf("jwt ttl must be positive")
	}

	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}

	signed, err := gojwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, claims, nil
}

// Parse verifies signature, issuer and expiry.
func Parse(cfg config.JWTConfig, token string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(
		token,
		claims,
		func(t *gojwt.Token) (any, error) {
			if t.Method != signingMethod {
				return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		gojwt.WithValidMethods([]string{signingMethod.Alg()}),
		gojwt.WithIssuer(cfg.Issuer),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing token id", ErrInvalidToken)
	}

	return claims, nil
}
