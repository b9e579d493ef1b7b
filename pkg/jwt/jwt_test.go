package jwt

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestIssuer(t *testing.T, ttl time.Duration) *Issuer {
	t.Helper()
	i, err := NewIssuer("test-secret", ttl)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return i
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewIssuer("", time.Minute); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestMintAndDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, 15*time.Minute)
	driverID := uuid.New()

	raw, err := issuer.MintAccess(driverID)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	if parts := strings.Split(raw, "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	claims, err := issuer.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Typ != TypeAccess {
		t.Fatalf("typ = %q, want %q", claims.Typ, TypeAccess)
	}
	if claims.Subject != driverID.String() {
		t.Fatalf("sub = %q, want %q", claims.Subject, driverID)
	}

	got, err := DriverID(claims)
	if err != nil {
		t.Fatalf("DriverID: %v", err)
	}
	if got != driverID {
		t.Fatalf("DriverID = %s, want %s", got, driverID)
	}
}

func TestDecodeExpired(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, -time.Minute)
	raw, err := issuer.MintAccess(uuid.New())
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	if _, err := issuer.Decode(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("Decode expired token err = %v, want %v", err, ErrExpired)
	}
}

func TestDecodeWrongKey(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, time.Minute)

	other, err := NewIssuer("a-different-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	raw, err := other.MintAccess(uuid.New())
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	if _, err := issuer.Decode(raw); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Decode foreign token err = %v, want %v", err, ErrBadSignature)
	}
}

func TestDecodeSplicedSignature(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, time.Minute)
	a, err := issuer.MintAccess(uuid.New())
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	b, err := issuer.MintAccess(uuid.New())
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")
	forged := aParts[0] + "." + aParts[1] + "." + bParts[2]

	if _, err := issuer.Decode(forged); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Decode spliced token err = %v, want %v", err, ErrBadSignature)
	}
}

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, time.Minute)
	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := issuer.Decode(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(%q) err = %v, want %v", raw, err, ErrMalformed)
		}
	}
}

func TestDriverIDGuards(t *testing.T) {
	t.Parallel()

	driverID := uuid.New()

	_, err := DriverID(&Claims{
		Typ:              "refresh",
		RegisteredClaims: gojwt.RegisteredClaims{Subject: driverID.String()},
	})
	if !errors.Is(err, ErrWrongType) {
		t.Fatalf("wrong typ err = %v, want %v", err, ErrWrongType)
	}

	_, err = DriverID(&Claims{Typ: TypeAccess})
	if !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("empty subject err = %v, want %v", err, ErrInvalidSubject)
	}

	_, err = DriverID(&Claims{
		Typ:              TypeAccess,
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "not-a-uuid"},
	})
	if !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("bad subject err = %v, want %v", err, ErrInvalidSubject)
	}
}

func TestRequireDriverMiddleware(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t, time.Minute)
	driverID := uuid.New()
	raw, err := issuer.MintAccess(driverID)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	var seen uuid.UUID
	handler := issuer.RequireDriver(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetDriverID(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "no header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + raw, status: http.StatusUnauthorized},
		{name: "bare token", header: raw, status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer not-a-token", status: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + raw, status: http.StatusOK},
		{name: "case-insensitive scheme", header: "bearer " + raw, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && seen != driverID {
				t.Fatalf("context driver id = %s, want %s", seen, driverID)
			}
		})
	}
}
