package security_test

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword failed for the correct password: ok=%v err=%v", ok, err)
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", testPasswordConfig()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := security.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey returned error: %v", err)
	}
	if len(key.Plain) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(key.Plain))
	}
	if !strings.HasPrefix(key.Plain, key.Prefix) || len(key.Prefix) != 8 {
		t.Fatalf("unexpected prefix %q", key.Prefix)
	}
	if key.Hash != security.HashAPIKey(key.Plain) {
		t.Fatal("hash should match the presented key")
	}
	if key.Hash != security.HashAPIKey("  "+key.Plain+" ") {
		t.Fatal("hashing should ignore surrounding whitespace")
	}

	other, err := security.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey returned error: %v", err)
	}
	if other.Plain == key.Plain {
		t.Fatal("keys should be unique")
	}
}

// pbkdf2Hash builds a legacy hash the way accounts exported from the previous
// backend store them.
func pbkdf2Hash(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2_sha256$%d$%s$%s", iterations, salt, base64.StdEncoding.EncodeToString(key))
}

func TestVerifyPasswordLegacyPBKDF2(t *testing.T) {
	encoded := pbkdf2Hash("clave-antigua", "Qx7saltsalt", 1000)

	ok, err := security.VerifyPassword("clave-antigua", encoded)
	if err != nil || !ok {
		t.Fatalf("expected legacy hash to verify: ok=%v err=%v", ok, err)
	}
	ok, err = security.VerifyPassword("otra-clave", encoded)
	if err != nil || ok {
		t.Fatalf("expected mismatch: ok=%v err=%v", ok, err)
	}
	if _, err := security.VerifyPassword("x", "pbkdf2_sha256$abc$salt$AAAA"); err == nil {
		t.Fatal("expected malformed iteration count to fail")
	}
}

func TestNeedsRehash(t *testing.T) {
	cfg := testPasswordConfig()
	current, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if security.NeedsRehash(current, cfg) {
		t.Fatal("fresh hash should not need rehash")
	}

	stronger := cfg
	stronger.ArgonTime = 2
	if !security.NeedsRehash(current, stronger) {
		t.Fatal("changed parameters should trigger rehash")
	}
	if !security.NeedsRehash(pbkdf2Hash("x", "salt", 1000), cfg) {
		t.Fatal("legacy hashes should trigger rehash")
	}
}
