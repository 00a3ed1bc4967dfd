package server

import "golang.org/x/crypto/bcrypt"

// hashPassword generates a bcrypt hash of the password.
// Cost 12 balances verification latency against brute-force resistance.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a candidate with its stored hash. bcrypt's
// comparison does not leak timing about the secret.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
