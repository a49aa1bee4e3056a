package utils

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw123456" {
		t.Fatalf("hash must not equal the plain password")
	}

	if !CheckPasswordHash("pw123456", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestHashPasswordRejectsShortPassword(t *testing.T) {
	if _, err := HashPassword("pw1"); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must differ")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"   ", true},
		{"pw1", true},
		{"pw123456", false},
		{strings.Repeat("x", 64), false},
	}

	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ValidatePassword(%q): err=%v, wantErr=%v", tc.password, err, tc.wantErr)
		}
	}
}
