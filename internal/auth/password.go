// Package auth hashes and verifies user passwords for the authentication
// wizard (Section 6.2). Grounded on louisbranch-fracturing.space's
// oauth/handlers.go (bcrypt.CompareHashAndPassword against a stored hash)
// since the teacher repo's own client.validatePassword is an explicit
// TODO placeholder with no real hashing to build on.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt verifier for storage in
// User.PasswordVerifier.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether password matches the stored verifier.
func VerifyPassword(verifier, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(password)) == nil
}
