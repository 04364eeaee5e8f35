package ports

import (
	"context"

	"github.com/vavastapak/account-service/internal/core/domain"
)

// ResetTokenRegistry tracks at most one live reset token per email.
//
// Operations on a single email must be linearizable: Issue overwrites any
// previous token (last write wins), Resolve evicts an expired match, Consume
// only succeeds for the caller still holding the live token, and Restore never
// overwrites a newer entry.
type ResetTokenRegistry interface {
	// Issue creates a fresh token for email, superseding any earlier one.
	Issue(ctx context.Context, email string) (domain.ResetToken, error)
	// Resolve returns the email bound to token. Unknown tokens yield
	// domain.ErrInvalidResetToken; expired ones are evicted and yield
	// domain.ErrResetTokenExpired.
	Resolve(ctx context.Context, token string) (string, error)
	// Consume removes email's entry if it still holds token and returns it,
	// otherwise it returns domain.ErrInvalidResetToken.
	Consume(ctx context.Context, email, token string) (domain.ResetToken, error)
	// Restore puts back an entry returned by Consume. It is a no-op when the
	// email already has an entry or tok has expired.
	Restore(ctx context.Context, tok domain.ResetToken) error
	Ping(ctx context.Context) error
}
