package security

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored digest.
const PasswordCost = 10

// digest of a random string nobody knows, compared against when the account
// does not exist so both login failure paths spend the same time
var (
	dummyOnce sync.Once
	dummyHash string
)

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// VerifyPassword reports whether plain matches hash. Malformed digests never match.
func VerifyPassword(hash, plain string) bool {
	return CheckPassword(hash, plain) == nil
}

// BurnPassword runs a full comparison against a digest that never matches.
func BurnPassword(plain string) {
	dummyOnce.Do(func() {
		b := make([]byte, 16)
		_, _ = rand.Read(b)
		dummyHash, _ = HashPassword(hex.EncodeToString(b))
	})
	_ = CheckPassword(dummyHash, plain)
}

// Hasher adapts the package functions to the interface the account service needs.
type Hasher struct{}

func (Hasher) Hash(plain string) (string, error) { return HashPassword(plain) }

func (Hasher) Verify(plain, hash string) bool { return VerifyPassword(hash, plain) }

func (Hasher) Burn(plain string) { BurnPassword(plain) }
