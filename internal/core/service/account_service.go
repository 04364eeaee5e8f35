package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vavastapak/account-service/internal/core/domain"
	"github.com/vavastapak/account-service/internal/core/ports"
)

const resetSubject = "Reset Your Password"

// Options tunes AccountService behaviour that the original system hard-coded.
type Options struct {
	// DefaultRole is stored when registration omits a role.
	DefaultRole string
	// ResetLinkBase is the page the reset e-mail links to; the token is
	// appended as the "token" query parameter.
	ResetLinkBase string
	// HideUnknownEmails makes RequestPasswordReset report success for
	// addresses that have no account instead of domain.ErrAccountNotFound.
	HideUnknownEmails bool
	// AllowWipe enables WipeAccounts. Without it the call is forbidden.
	AllowWipe bool
}

// AccountService implements registration, login and the password reset flow.
type AccountService struct {
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	tokens   ports.ResetTokenRegistry
	notifier ports.NotificationQueue
	opts     Options
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.ResetTokenRegistry,
	notifier ports.NotificationQueue,
	opts Options,
	log zerolog.Logger,
) *AccountService {
	if opts.DefaultRole == "" {
		opts.DefaultRole = domain.DefaultRole
	}
	if opts.ResetLinkBase == "" {
		opts.ResetLinkBase = "http://localhost:8080/reset-password"
	}
	return &AccountService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		opts:     opts,
		log:      log,
	}
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	mobile := strings.TrimSpace(in.Mobile)
	if name == "" || email == "" || mobile == "" || in.Password == "" {
		return nil, domain.ErrMalformedInput
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = s.opts.DefaultRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash secret: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Name:       name,
		Email:      email,
		SecretHash: hash,
		Mobile:     mobile,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, storageError("register", err)
	}

	s.log.Info().Str("account_id", created.ID).Str("role", created.Role).Msg("account registered")
	return created, nil
}

// Authenticate checks credentials. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Match the cost of the wrong-password path.
			s.hasher.Verify(password, s.timingHash())
			return nil, domain.ErrUnauthorized
		}
		return nil, storageError("authenticate", err)
	}

	if !s.hasher.Verify(password, account.SecretHash) {
		return nil, domain.ErrUnauthorized
	}
	return account, nil
}

// RequestPasswordReset issues a reset token for email and queues the reset
// e-mail. Delivery is best effort and never fails the request.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrMalformedInput
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			if s.opts.HideUnknownEmails {
				s.log.Debug().Msg("password reset requested for unknown email")
				return nil
			}
			return domain.ErrAccountNotFound
		}
		return storageError("request reset", err)
	}

	token, err := s.tokens.Issue(ctx, account.Email)
	if err != nil {
		return storageError("request reset: issue token", err)
	}

	n := domain.Notification{
		ID:      uuid.NewString(),
		To:      account.Email,
		Subject: resetSubject,
		Body:    resetBody(s.resetLink(token.Value), token.ExpiresAt.Sub(token.IssuedAt)),
	}
	if !s.notifier.Enqueue(n) {
		s.log.Warn().Str("account_id", account.ID).Str("notification_id", n.ID).Msg("reset e-mail dropped")
	}

	s.log.Info().
		Str("account_id", account.ID).
		Time("expires_at", token.ExpiresAt).
		Msg("password reset requested")
	return nil
}

// CheckResetToken reports whether token is currently usable. Expired tokens
// are evicted as a side effect.
func (s *AccountService) CheckResetToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidResetToken
	}
	_, err := s.tokens.Resolve(ctx, token)
	return tokenError("check reset token", err)
}

// CompletePasswordReset replaces the password bound to a reset token.
// Errors take precedence in this order: token validity, confirmation
// mismatch, persistence.
func (s *AccountService) CompletePasswordReset(ctx context.Context, in ports.CompleteResetInput) error {
	if in.Token == "" {
		return domain.ErrInvalidResetToken
	}

	email, err := s.tokens.Resolve(ctx, in.Token)
	if err != nil {
		return tokenError("complete reset", err)
	}

	if in.NewPassword != in.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	if in.NewPassword == "" {
		return domain.ErrMalformedInput
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("complete reset: hash secret: %w", err)
	}

	// Claiming the token before the write keeps it single-use when two
	// submissions race: only one of them gets past Consume.
	consumed, err := s.tokens.Consume(ctx, email, in.Token)
	if err != nil {
		return tokenError("complete reset: consume token", err)
	}

	if err := s.repo.UpdateSecretHash(ctx, email, hash); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidResetToken
		}
		// The password did not change, so the link stays usable for a retry.
		if rerr := s.tokens.Restore(ctx, consumed); rerr != nil {
			s.log.Error().Err(rerr).Msg("failed to restore reset token")
		}
		return storageError("complete reset", err)
	}

	s.log.Info().Msg("password reset completed")
	return nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError("list accounts", err)
	}
	for i := range accounts {
		accounts[i].SecretHash = ""
	}
	return accounts, nil
}

// WipeAccounts deletes every account. It is refused unless the service was
// built with AllowWipe.
func (s *AccountService) WipeAccounts(ctx context.Context, actor string) (int64, error) {
	if !s.opts.AllowWipe {
		s.log.Warn().Str("actor", actor).Msg("account wipe refused: disabled by configuration")
		return 0, domain.ErrForbidden
	}

	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, storageError("wipe accounts", err)
	}

	s.log.Warn().Str("actor", actor).Int64("deleted", n).Msg("all accounts wiped")
	return n, nil
}

func (s *AccountService) resetLink(token string) string {
	u, err := url.Parse(s.opts.ResetLinkBase)
	if err != nil {
		return s.opts.ResetLinkBase + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *AccountService) timingHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare timing hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func resetBody(link string, ttl time.Duration) string {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes <= 0 {
		minutes = 1
	}
	return fmt.Sprintf(`Hello,

Click the link below to reset your password (valid for %d minutes):

%s

If you did not request this, ignore this email.

- Vavastapak Team
`, minutes, link)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// tokenError passes registry verdicts through and marks anything else as a
// backend failure.
func tokenError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidResetToken) || errors.Is(err, domain.ErrResetTokenExpired) {
		return err
	}
	return storageError(op, err)
}
