package ports

// PasswordHasher isolates the one-way secret transform so the scheme can be
// swapped without touching the service or the schema.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports a match. Unrecognised hash formats are a mismatch, never
	// an error.
	Verify(plaintext, secretHash string) bool
}
