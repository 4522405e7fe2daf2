package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if strings.Contains(encoded, "secret1") {
		t.Fatal("encoded hash must not contain the plaintext password")
	}

	ok, err := VerifyPassword("secret1", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = VerifyPassword("wrong-pass", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	first, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	encoded, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	cases := []struct {
		name     string
		password string
		encoded  string
	}{
		{"empty password", "", encoded},
		{"empty encoded", "secret1", ""},
		{"both empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := VerifyPassword(tc.password, tc.encoded)
			if err != nil {
				t.Fatalf("VerifyPassword: %v", err)
			}
			if ok {
				t.Fatal("must not verify")
			}
		})
	}
}

func TestVerifyPasswordMalformedEncoded(t *testing.T) {
	for _, encoded := range []string{"not-a-hash", "only-one-part:", "!!!:???", "a:b:c"} {
		if _, err := VerifyPassword("secret1", encoded); err == nil {
			t.Fatalf("VerifyPassword with encoded %q: expected error", encoded)
		}
	}
}
