package auth

import "testing"

func TestNewRefreshToken(t *testing.T) {
	t.Parallel()

	a, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	b, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}

	// 48 bytes of entropy is 64 characters of unpadded base64url.
	if len(a) != 64 {
		t.Fatalf("token length = %d, want 64", len(a))
	}
	if a == b {
		t.Fatal("two tokens are identical")
	}
}

func TestHashRefreshToken(t *testing.T) {
	t.Parallel()

	h1 := HashRefreshToken("some-raw-token")
	h2 := HashRefreshToken("some-raw-token")
	if h1 != h2 {
		t.Fatal("hash is not deterministic")
	}
	if h1 == "some-raw-token" {
		t.Fatal("hash equals the raw token")
	}
	// SHA-256 is 32 bytes, 43 characters of unpadded base64url.
	if len(h1) != 43 {
		t.Fatalf("hash length = %d, want 43", len(h1))
	}
}
