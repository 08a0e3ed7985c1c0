package auth

import "testing"

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Fatal("expected the matching password to verify")
	}
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatal("expected a mismatched password to fail verification")
	}
}

func TestHashPasswordProducesDifferentHashesForSamePassword(t *testing.T) {
	h1, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("expected bcrypt's random salt to produce different hashes for the same password")
	}
	if !VerifyPassword(h1, "same password") || !VerifyPassword(h2, "same password") {
		t.Fatal("expected both hashes to verify the original password")
	}
}

func TestVerifyPasswordRejectsGarbageVerifier(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("expected a malformed verifier to fail verification rather than panic")
	}
}
