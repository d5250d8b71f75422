package password

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/pbkdf2"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	encoded, err := Hash("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	if !Verify("correct horse battery", encoded) {
		t.Fatal("expected password to verify")
	}
	if Verify("wrong horse battery", encoded) {
		t.Fatal("expected wrong password to fail")
	}
	if NeedsRehash(encoded) {
		t.Fatal("fresh hash should not need a rehash")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, _ := Hash("same-password")
	b, _ := Hash("same-password")
	if a == b {
		t.Fatal("expected different salts")
	}
}

func legacyHash(plain, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(plain), []byte(salt), iterations, 32, sha256.New)
	return "pbkdf2_sha256$" + strconv.Itoa(iterations) + "$" + salt + "$" + base64.StdEncoding.EncodeToString(key)
}

func TestVerifyLegacyPBKDF2(t *testing.T) {
	encoded := legacyHash("imported-password", "s4ltS4lt", 1000)
	if !Verify("imported-password", encoded) {
		t.Fatal("expected legacy hash to verify")
	}
	if Verify("other-password", encoded) {
		t.Fatal("expected wrong password to fail")
	}
	if !NeedsRehash(encoded) {
		t.Fatal("legacy hash should be rehashed")
	}
}

func TestNeedsRehashOnOldParameters(t *testing.T) {
	encoded := "$argon2id$v=19$m=32768,t=2,p=2$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5"
	if !NeedsRehash(encoded) {
		t.Fatal("expected weaker parameters to need a rehash")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$aa$bb",
		"$argon2id$v=19$m=x,t=1,p=1$aa$bb",
		"$argon2id$v=19$m=1,t=1,p=1$aa",
		"pbkdf2_sha256$zero$salt$aGFzaA==",
		"pbkdf2_sha256$1000$salt",
	} {
		if Verify("anything", encoded) {
			t.Fatalf("expected %q to be rejected", encoded)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check("short"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if err := Check("long-enough"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
