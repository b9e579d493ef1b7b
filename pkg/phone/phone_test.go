package phone

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
		err  error
	}{
		{name: "ten digits", in: "5551234567", want: "+15551234567"},
		{name: "formatted", in: "(555) 123-4567", want: "+15551234567"},
		{name: "with country code", in: "+1 555 123 4567", want: "+15551234567"},
		{name: "eleven digits leading one", in: "15551234567", want: "+15551234567"},
		{name: "empty", in: "", err: ErrRequired},
		{name: "whitespace only", in: "   ", err: ErrRequired},
		{name: "too short", in: "555123", err: ErrInvalid},
		{name: "eleven digits wrong prefix", in: "25551234567", err: ErrInvalid},
		{name: "too long", in: "155512345678", err: ErrInvalid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.in)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Normalize(%q) err = %v, want %v", tt.in, err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMask(t *testing.T) {
	t.Parallel()

	if got := Mask("+15551234567"); got != "***4567" {
		t.Fatalf("Mask = %q, want ***4567", got)
	}
	if got := Mask("12"); got != "***" {
		t.Fatalf("Mask short = %q, want ***", got)
	}
	if got := Mask(""); got != "" {
		t.Fatalf("Mask empty = %q, want empty", got)
	}
}
