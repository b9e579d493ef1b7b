package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TypeAccess is the value carried in the "typ" claim of every access token.
const TypeAccess = "access"

// Decode / guard failures. Handlers map all of these to 401.
var (
	ErrMalformed      = errors.New("malformed token")
	ErrBadSignature   = errors.New("invalid token signature")
	ErrExpired        = errors.New("token expired")
	ErrWrongType      = errors.New("invalid token type")
	ErrInvalidSubject = errors.New("invalid token subject")
)

// Claims is the access-token payload: registered sub/iat/exp plus a typ tag
// distinguishing access tokens from anything else signed with the same key.
type Claims struct {
	Typ string `json:"typ"`
	gojwt.RegisteredClaims
}

// Issuer mints and verifies driver access tokens. The signing secret and TTL
// are fixed at construction; nothing is read from the environment per request.
type Issuer struct {
	secret    []byte
	accessTTL time.Duration
}

// NewIssuer builds an Issuer. An empty secret is a configuration error and
// must abort startup — tokens are never minted or accepted unsigned.
func NewIssuer(secret string, accessTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt: signing secret is required")
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// MintAccess creates a signed access token for the given driver.
func (i *Issuer) MintAccess(driverID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		Typ: TypeAccess,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   driverID.String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Decode parses and verifies a raw token string.
func (i *Issuer) Decode(raw string) (*Claims, error) {
	token, err := gojwt.ParseWithClaims(raw, &Claims{}, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// DriverID guards decoded claims for driver-scoped use: the typ tag must be
// "access" and the subject must be a parseable UUID.
func DriverID(claims *Claims) (uuid.UUID, error) {
	if claims.Typ != TypeAccess {
		return uuid.Nil, ErrWrongType
	}
	if claims.Subject == "" {
		return uuid.Nil, ErrInvalidSubject
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidSubject
	}
	return id, nil
}

// ---- HTTP Middleware ----

type ctxKey string

const driverCtxKey ctxKey = "jwt_driver_id"

// RequireDriver rejects requests without a valid driver access token and
// stores the authenticated driver id in the request context.
func (i *Issuer) RequireDriver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}
		claims, err := i.Decode(raw)
		if err != nil {
			unauthorized(w)
			return
		}
		driverID, err := DriverID(claims)
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), driverCtxKey, driverID)))
	})
}

// GetDriverID retrieves the authenticated driver id from context
// (uuid.Nil if absent).
func GetDriverID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(driverCtxKey).(uuid.UUID)
	return id
}

// bearerToken extracts the raw token from an Authorization header value.
// Missing scheme, wrong scheme, and empty token all fail.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) < 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
}
