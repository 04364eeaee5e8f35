// Package memory provides a process-local reset token registry.
//
// Tokens do not survive a restart. Expiry is enforced when a token is read,
// and Run additionally sweeps dead entries so abandoned tokens do not pile up.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vavastapak/account-service/internal/core/domain"
	"github.com/vavastapak/account-service/internal/infrastructure/crypto"
)

const defaultSweepInterval = time.Minute

var errTokenCollision = errors.New("reset token collision")

// ResetTokenRegistry implements ports.ResetTokenRegistry in memory. A single
// mutex covers both indexes, which keeps every operation linearizable.
type ResetTokenRegistry struct {
	mu      sync.Mutex
	byEmail map[string]domain.ResetToken
	byToken map[string]string

	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	newToken   func() (string, error)
	log        zerolog.Logger
}

// Option configures a ResetTokenRegistry.
type Option func(*ResetTokenRegistry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *ResetTokenRegistry) { r.now = now }
}

// WithMaxEntries caps the number of live entries; 0 means unbounded.
func WithMaxEntries(n int) Option {
	return func(r *ResetTokenRegistry) { r.maxEntries = n }
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(log zerolog.Logger) Option {
	return func(r *ResetTokenRegistry) { r.log = log }
}

func withTokenSource(fn func() (string, error)) Option {
	return func(r *ResetTokenRegistry) { r.newToken = fn }
}

// NewResetTokenRegistry returns an empty registry issuing tokens valid for
// ttl. A non-positive ttl selects domain.DefaultResetTokenTTL.
func NewResetTokenRegistry(ttl time.Duration, opts ...Option) *ResetTokenRegistry {
	if ttl <= 0 {
		ttl = domain.DefaultResetTokenTTL
	}
	r := &ResetTokenRegistry{
		byEmail:  make(map[string]domain.ResetToken),
		byToken:  make(map[string]string),
		ttl:      ttl,
		now:      time.Now,
		newToken: crypto.NewResetTokenValue,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ResetTokenRegistry) Issue(_ context.Context, email string) (domain.ResetToken, error) {
	value, err := r.newToken()
	if err != nil {
		return domain.ResetToken{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byToken[value]; taken {
		return domain.ResetToken{}, errTokenCollision
	}

	now := r.now().UTC()
	if old, ok := r.byEmail[email]; ok {
		delete(r.byToken, old.Value)
	} else if r.maxEntries > 0 && len(r.byEmail) >= r.maxEntries {
		r.sweepLocked(now)
		if len(r.byEmail) >= r.maxEntries {
			r.evictSoonestLocked()
		}
	}

	tok := domain.ResetToken{
		Email:     email,
		Value:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(r.ttl),
	}
	r.byEmail[email] = tok
	r.byToken[value] = email
	return tok, nil
}

func (r *ResetTokenRegistry) Resolve(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email, ok := r.byToken[token]
	if !ok {
		return "", domain.ErrInvalidResetToken
	}
	if r.byEmail[email].Expired(r.now()) {
		r.removeLocked(email, token)
		return "", domain.ErrResetTokenExpired
	}
	return email, nil
}

func (r *ResetTokenRegistry) Consume(_ context.Context, email, token string) (domain.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok := r.byEmail[email]
	if !ok || tok.Value != token {
		return domain.ResetToken{}, domain.ErrInvalidResetToken
	}
	r.removeLocked(email, token)
	if tok.Expired(r.now()) {
		return domain.ResetToken{}, domain.ErrResetTokenExpired
	}
	return tok, nil
}

func (r *ResetTokenRegistry) Restore(_ context.Context, tok domain.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tok.Value == "" || tok.Expired(r.now()) {
		return nil
	}
	if _, ok := r.byEmail[tok.Email]; ok {
		return nil
	}
	if _, ok := r.byToken[tok.Value]; ok {
		return nil
	}
	r.byEmail[tok.Email] = tok
	r.byToken[tok.Value] = tok.Email
	return nil
}

func (r *ResetTokenRegistry) Ping(context.Context) error {
	return nil
}

// Len reports the number of stored entries, live or not yet swept.
func (r *ResetTokenRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}

// Sweep removes every entry expired at now and returns how many went.
func (r *ResetTokenRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now)
}

// Run sweeps every interval until ctx is cancelled.
func (r *ResetTokenRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.log.Debug().Int("evicted", n).Msg("expired reset tokens swept")
			}
		}
	}
}

func (r *ResetTokenRegistry) sweepLocked(now time.Time) int {
	n := 0
	for email, tok := range r.byEmail {
		if tok.Expired(now) {
			r.removeLocked(email, tok.Value)
			n++
		}
	}
	return n
}

func (r *ResetTokenRegistry) evictSoonestLocked() {
	var victim domain.ResetToken
	found := false
	for _, tok := range r.byEmail {
		if !found || tok.ExpiresAt.Before(victim.ExpiresAt) {
			victim, found = tok, true
		}
	}
	if found {
		r.removeLocked(victim.Email, victim.Value)
		r.log.Warn().Msg("reset token registry full, evicted oldest entry")
	}
}

func (r *ResetTokenRegistry) removeLocked(email, token string) {
	delete(r.byEmail, email)
	delete(r.byToken, token)
}
