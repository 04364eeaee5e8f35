package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vavastapak/account-service/internal/core/domain"
	"github.com/vavastapak/account-service/internal/infrastructure/crypto"
)

const (
	emailKeyPrefix = "reset:email:"
	tokenKeyPrefix = "reset:token:"

	defaultRetention = time.Hour
)

// Result codes shared by the scripts below.
const (
	codeMissing = 0
	codeLive    = 1
	codeExpired = 2
)

// issueScript replaces the email's entry and drops the superseded token's
// pointer in one step.
//
// KEYS[1] email key, KEYS[2] new token key
// ARGV[1] token, ARGV[2] expires_at (unix ms), ARGV[3] email,
// ARGV[4] key ttl (ms), ARGV[5] token key prefix
var issueScript = redis.NewScript(`
local old = redis.call('HGET', KEYS[1], 'token')
if old then
  redis.call('DEL', ARGV[5] .. old)
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'token', ARGV[1], 'expires_at', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
redis.call('SET', KEYS[2], ARGV[3], 'PX', ARGV[4])
return 1
`)

// resolveScript looks a token up and evicts it when expired.
//
// KEYS[1] token key
// ARGV[1] now (unix ms), ARGV[2] email key prefix, ARGV[3] token
var resolveScript = redis.NewScript(`
local email = redis.call('GET', KEYS[1])
if not email then
  return {0, ''}
end
local ek = ARGV[2] .. email
local vals = redis.call('HMGET', ek, 'token', 'expires_at')
if not vals[1] or vals[1] ~= ARGV[3] then
  return {0, ''}
end
if tonumber(vals[2]) <= tonumber(ARGV[1]) then
  redis.call('DEL', KEYS[1], ek)
  return {2, email}
end
return {1, email}
`)

// consumeScript deletes the entry only if it still holds the given token and
// returns its deadline.
//
// KEYS[1] email key, KEYS[2] token key
// ARGV[1] token, ARGV[2] now (unix ms)
var consumeScript = redis.NewScript(`
local vals = redis.call('HMGET', KEYS[1], 'token', 'expires_at')
if not vals[1] or vals[1] ~= ARGV[1] then
  return {0, ''}
end
redis.call('DEL', KEYS[1], KEYS[2])
if tonumber(vals[2]) <= tonumber(ARGV[2]) then
  return {2, vals[2]}
end
return {1, vals[2]}
`)

// restoreScript re-creates a consumed entry unless either key exists again.
//
// KEYS[1] email key, KEYS[2] token key
// ARGV[1] token, ARGV[2] expires_at (unix ms), ARGV[3] email, ARGV[4] key ttl (ms)
var restoreScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 or redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'token', ARGV[1], 'expires_at', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
redis.call('SET', KEYS[2], ARGV[3], 'PX', ARGV[4])
return 1
`)

// ResetTokenRegistry implements ports.ResetTokenRegistry on Redis so tokens
// survive restarts and are shared between replicas.
//
// Expiry is checked against the stored deadline when a token is read. Keys
// also carry a Redis TTL of the token lifetime plus a retention window, which
// reclaims abandoned tokens while still letting late lookups report expiry.
// The scripts touch keys derived inside Lua, so a cluster deployment needs
// both keys on one slot.
type ResetTokenRegistry struct {
	client    *redis.Client
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	newToken  func() (string, error)
}

// RegistryOption configures a ResetTokenRegistry.
type RegistryOption func(*ResetTokenRegistry)

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *ResetTokenRegistry) { r.now = now }
}

// NewResetTokenRegistry wraps client. Non-positive durations fall back to
// domain.DefaultResetTokenTTL and one hour of retention.
func NewResetTokenRegistry(client *redis.Client, ttl, retention time.Duration, opts ...RegistryOption) *ResetTokenRegistry {
	if ttl <= 0 {
		ttl = domain.DefaultResetTokenTTL
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	r := &ResetTokenRegistry{
		client:    client,
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
		newToken:  crypto.NewResetTokenValue,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ResetTokenRegistry) Issue(ctx context.Context, email string) (domain.ResetToken, error) {
	value, err := r.newToken()
	if err != nil {
		return domain.ResetToken{}, err
	}

	now := r.now().UTC()
	tok := domain.ResetToken{
		Email:     email,
		Value:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(r.ttl),
	}

	keyTTL := r.ttl + r.retention
	err = issueScript.Run(ctx, r.client,
		[]string{emailKey(email), tokenKey(value)},
		value, tok.ExpiresAt.UnixMilli(), email, keyTTL.Milliseconds(), tokenKeyPrefix,
	).Err()
	if err != nil {
		return domain.ResetToken{}, fmt.Errorf("issue reset token: %w", err)
	}
	return tok, nil
}

func (r *ResetTokenRegistry) Resolve(ctx context.Context, token string) (string, error) {
	res, err := resolveScript.Run(ctx, r.client,
		[]string{tokenKey(token)},
		r.now().UnixMilli(), emailKeyPrefix, token,
	).Slice()
	if err != nil {
		return "", fmt.Errorf("resolve reset token: %w", err)
	}
	if len(res) != 2 {
		return "", fmt.Errorf("resolve reset token: unexpected reply %v", res)
	}

	code, _ := res[0].(int64)
	email, _ := res[1].(string)
	switch code {
	case codeLive:
		return email, nil
	case codeExpired:
		return "", domain.ErrResetTokenExpired
	default:
		return "", domain.ErrInvalidResetToken
	}
}

func (r *ResetTokenRegistry) Consume(ctx context.Context, email, token string) (domain.ResetToken, error) {
	res, err := consumeScript.Run(ctx, r.client,
		[]string{emailKey(email), tokenKey(token)},
		token, r.now().UnixMilli(),
	).Slice()
	if err != nil {
		return domain.ResetToken{}, fmt.Errorf("consume reset token: %w", err)
	}
	if len(res) != 2 {
		return domain.ResetToken{}, fmt.Errorf("consume reset token: unexpected reply %v", res)
	}

	code, _ := res[0].(int64)
	switch code {
	case codeLive:
	case codeExpired:
		return domain.ResetToken{}, domain.ErrResetTokenExpired
	default:
		return domain.ResetToken{}, domain.ErrInvalidResetToken
	}

	raw, _ := res[1].(string)
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.ResetToken{}, fmt.Errorf("consume reset token: bad expires_at %q: %w", raw, err)
	}
	return domain.ResetToken{
		Email:     email,
		Value:     token,
		ExpiresAt: time.UnixMilli(ms).UTC(),
	}, nil
}

func (r *ResetTokenRegistry) Restore(ctx context.Context, tok domain.ResetToken) error {
	now := r.now()
	if tok.Value == "" || tok.Expired(now) {
		return nil
	}

	keyTTL := tok.ExpiresAt.Sub(now) + r.retention
	err := restoreScript.Run(ctx, r.client,
		[]string{emailKey(tok.Email), tokenKey(tok.Value)},
		tok.Value, tok.ExpiresAt.UnixMilli(), tok.Email, keyTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("restore reset token: %w", err)
	}
	return nil
}

func (r *ResetTokenRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func emailKey(email string) string {
	return emailKeyPrefix + email
}

func tokenKey(token string) string {
	return tokenKeyPrefix + token
}
