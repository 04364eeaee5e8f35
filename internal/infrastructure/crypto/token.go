package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// ResetTokenBytes is the entropy of a reset token before encoding.
const ResetTokenBytes = 32

// NewResetTokenValue returns ResetTokenBytes of crypto/rand output encoded as
// unpadded URL-safe base64, ready to embed in a link.
func NewResetTokenValue() (string, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
