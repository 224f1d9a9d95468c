package auth

import (
	"strings"
	"testing"
)

func TestHashPasswordAndCheck(t *testing.T) {
	plain := "Admin123!"
	hash, err := HashPassword(plain)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == plain {
		t.Fatal("hash must not equal plaintext")
	}
	if !strings.HasPrefix(hash, "$2a$12$") {
		t.Fatalf("expected bcrypt cost 12 hash, got %q", hash[:7])
	}
	if !CheckPassword(hash, plain) {
		t.Fatal("CheckPassword should succeed for correct password")
	}
	if CheckPassword(hash, "errada") {
		t.Fatal("CheckPassword should fail for wrong password")
	}
	if CheckPassword("not-a-hash", plain) {
		t.Fatal("CheckPassword should fail for malformed hash")
	}
}
