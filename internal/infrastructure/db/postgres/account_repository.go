package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vavastapak/account-service/internal/core/domain"
)

const (
	uniqueViolation = "23505"

	emailConstraint  = "users_email_key"
	mobileConstraint = "users_mobile_key"
)

// AccountRepository stores accounts in the users table.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query :=
		`INSERT INTO users (name, email, password, mobile, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	var id int64
	created := *account
	err := r.db.QueryRowContext(ctx, query,
		account.Name, account.Email, account.SecretHash, account.Mobile, nullable(account.Role),
	).Scan(&id, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if dup := duplicateIdentity(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created.ID = strconv.FormatInt(id, 10)
	return &created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query :=
		`SELECT id, name, email, password, mobile, role, created_at, updated_at
		 FROM users
		 WHERE email = $1`

	var (
		a    domain.Account
		id   int64
		role sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&id, &a.Name, &a.Email, &a.SecretHash, &a.Mobile, &role, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	a.ID = strconv.FormatInt(id, 10)
	a.Role = role.String
	return &a, nil
}

func (r *AccountRepository) UpdateSecretHash(ctx context.Context, email, secretHash string) error {
	query :=
		`UPDATE users SET password = $1, updated_at = now()
		 WHERE email = $2`

	res, err := r.db.ExecContext(ctx, query, secretHash, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query :=
		`SELECT id, name, email, mobile, role, created_at, updated_at
		 FROM users
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var (
			a    domain.Account
			id   int64
			role sql.NullString
		)
		if err := rows.Scan(&id, &a.Name, &a.Email, &a.Mobile, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.ID = strconv.FormatInt(id, 10)
		a.Role = role.String
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("delete accounts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete accounts: %w", err)
	}
	return n, nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// duplicateIdentity maps a unique violation to the identity field whose
// constraint fired. It returns nil for any other error.
func duplicateIdentity(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case emailConstraint:
		return &domain.DuplicateIdentityError{Field: domain.FieldEmail}
	case mobileConstraint:
		return &domain.DuplicateIdentityError{Field: domain.FieldMobile}
	default:
		return &domain.DuplicateIdentityError{}
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
