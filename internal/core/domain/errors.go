package domain

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrUnauthorized      = errors.New("invalid email or password")
	ErrInvalidResetToken = errors.New("invalid or expired token")
	ErrResetTokenExpired = errors.New("token has expired")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrMalformedInput    = errors.New("malformed input")
	ErrForbidden         = errors.New("access forbidden")

	// ErrStorage marks a backend failure. The cause is wrapped alongside it and
	// must never reach a client.
	ErrStorage = errors.New("storage failure")

	// ErrDuplicateIdentity matches any *DuplicateIdentityError via errors.Is.
	ErrDuplicateIdentity = errors.New("account already exists")
)

// Identity fields guarded by a uniqueness constraint.
const (
	FieldEmail  = "email"
	FieldMobile = "mobile"
)

// DuplicateIdentityError reports which unique identity key an insert collided
// with. Field is empty when the store could not tell.
type DuplicateIdentityError struct {
	Field string
}

func (e *DuplicateIdentityError) Error() string {
	switch e.Field {
	case FieldEmail:
		return "email already exists"
	case FieldMobile:
		return "mobile number already exists"
	default:
		return ErrDuplicateIdentity.Error()
	}
}

func (e *DuplicateIdentityError) Is(target error) bool {
	return target == ErrDuplicateIdentity
}
