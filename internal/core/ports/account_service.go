package ports

import (
	"context"

	"github.com/vavastapak/account-service/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Mobile   string
	Role     string // optional
}

// CompleteResetInput carries the fields of a password reset submission.
type CompleteResetInput struct {
	Token           string
	NewPassword     string
	ConfirmPassword string
}

// AccountService defines the account use cases.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
	CheckResetToken(ctx context.Context, token string) error
	CompletePasswordReset(ctx context.Context, in CompleteResetInput) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	WipeAccounts(ctx context.Context, actor string) (int64, error)
}
