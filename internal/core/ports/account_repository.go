package ports

import (
	"context"

	"github.com/vavastapak/account-service/internal/core/domain"
)

// AccountRepository is the credential store. Implementations must enforce
// email and mobile uniqueness with storage constraints and report collisions
// as *domain.DuplicateIdentityError.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateSecretHash(ctx context.Context, email, secretHash string) error
	// List returns every account without its secret hash.
	List(ctx context.Context) ([]domain.Account, error)
	// DeleteAll irreversibly removes every account and returns how many went.
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
