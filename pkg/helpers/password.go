package helpers

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost keeps hashing deliberately slow.
const DefaultPasswordCost = 12

// dummyHash is compared against when no account matches, so a login for an
// unknown email costs the same as one with a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-timing-equalizer"), bcrypt.MinCost)

// HashPassword hashes the plain text password using bcrypt at cost.
// Costs outside bcrypt's range fall back to DefaultPasswordCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnPasswordCheck performs a throwaway comparison.
func BurnPasswordCheck(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
