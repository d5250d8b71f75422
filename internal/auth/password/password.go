// Package password hashes account passwords with Argon2id. It also verifies
// pbkdf2_sha256 hashes carried over from an imported user table so those
// accounts can log in once and be rehashed.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// MinLength is the shortest password accepted for an account.
const MinLength = 8

var ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

var current = argonParams{memory: 64 * 1024, time: 1, threads: 4}

const (
	argonPrefix  = "$argon2id$v=19$"
	pbkdf2Prefix = "pbkdf2_sha256$"
	saltLen      = 16
	keyLen       = 32
)

// Check enforces the length rule without hashing.
func Check(plain string) error {
	if len(plain) < MinLength {
		return ErrTooShort
	}
	return nil
}

// Hash returns a PHC-style Argon2id string with a random salt.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, current.time, current.memory, current.threads, keyLen)
	return fmt.Sprintf("%sm=%d,t=%d,p=%d$%s$%s", argonPrefix,
		current.memory, current.time, current.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches encoded. Unknown formats never match.
func Verify(plain, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, argonPrefix):
		return verifyArgon(plain, strings.TrimPrefix(encoded, argonPrefix))
	case strings.HasPrefix(encoded, pbkdf2Prefix):
		return verifyPBKDF2(plain, strings.TrimPrefix(encoded, pbkdf2Prefix))
	default:
		return false
	}
}

// NeedsRehash is true for legacy formats and Argon2id hashes made with
// parameters other than the current ones.
func NeedsRehash(encoded string) bool {
	if !strings.HasPrefix(encoded, argonPrefix) {
		return true
	}
	p, _, _, err := parseArgon(strings.TrimPrefix(encoded, argonPrefix))
	return err != nil || p != current
}

func verifyArgon(plain, rest string) bool {
	p, salt, key, err := parseArgon(rest)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(plain), salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, got) == 1
}

// parseArgon reads "m=..,t=..,p=..$salt$key".
func parseArgon(rest string) (argonParams, []byte, []byte, error) {
	var p argonParams
	parts := strings.Split(rest, "$")
	if len(parts) != 3 {
		return p, nil, nil, errors.New("argon2id: wrong number of sections")
	}
	if _, err := fmt.Sscanf(parts[0], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("argon2id params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return p, nil, nil, err
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errors.New("argon2id: bad key")
	}
	return p, salt, key, nil
}

// verifyPBKDF2 reads "iterations$salt$base64key".
func verifyPBKDF2(plain, rest string) bool {
	parts := strings.Split(rest, "$")
	if len(parts) != 3 {
		return false
	}
	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return false
	}
	key, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(key) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(plain), []byte(parts[1]), iterations, len(key), sha256.New)
	return subtle.ConstantTimeCompare(key, got) == 1
}
