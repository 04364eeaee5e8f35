package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vavastapak/account-service/internal/api/middleware"
	"github.com/vavastapak/account-service/internal/core/domain"
	"github.com/vavastapak/account-service/internal/core/ports"
)

type stubAccountService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	completeFn func(ctx context.Context, in ports.CompleteResetInput) error
	wipeFn     func(ctx context.Context, actor string) (int64, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Authenticate(context.Context, string, string) (*domain.Account, error) {
	return nil, domain.ErrUnauthorized
}

func (s *stubAccountService) RequestPasswordReset(context.Context, string) error { return nil }

func (s *stubAccountService) CheckResetToken(context.Context, string) error { return nil }

func (s *stubAccountService) CompletePasswordReset(ctx context.Context, in ports.CompleteResetInput) error {
	return s.completeFn(ctx, in)
}

func (s *stubAccountService) ListAccounts(context.Context) ([]domain.Account, error) { return nil, nil }

func (s *stubAccountService) WipeAccounts(ctx context.Context, actor string) (int64, error) {
	return s.wipeFn(ctx, actor)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAccountHandler_Register_Success(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.Role != "support" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Account{ID: "1"}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/register",
		`{"name":"Alice","email":"alice@example.com","password":"secret","mobile":"5551234567","role":"support"}`)

	if err := NewAccountHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "User registered successfully" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestAccountHandler_Register_PassesDomainErrorThrough(t *testing.T) {
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			return nil, &domain.DuplicateIdentityError{Field: domain.FieldMobile}
		},
	}
	c, _ := newJSONContext(http.MethodPost, "/register",
		`{"name":"Alice","email":"alice@example.com","password":"secret","mobile":"5551234567"}`)

	err := NewAccountHandler(stub).Register(c)
	var dup *domain.DuplicateIdentityError
	if !errors.As(err, &dup) || dup.Field != domain.FieldMobile {
		t.Fatalf("expected mobile duplicate, got %v", err)
	}
}

func TestAccountHandler_Register_ValidationMessage(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/register",
		`{"name":"Alice","email":"nope","password":"secret","mobile":"12ab"}`)

	err := NewAccountHandler(&stubAccountService{}).Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	msg, _ := he.Message.(string)
	if !strings.Contains(msg, "email must be a valid email") {
		t.Fatalf("expected json field name in message, got %q", msg)
	}
	if !strings.Contains(msg, "mobile must contain digits only") {
		t.Fatalf("expected numeric message, got %q", msg)
	}
}

func TestAccountHandler_PasswordLimitCountsBytes(t *testing.T) {
	// 40 two-byte runes: within 72 characters, over 72 bytes.
	long := strings.Repeat("é", 40)
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
		completeFn: func(context.Context, ports.CompleteResetInput) error {
			t.Fatalf("service must not be called")
			return nil
		},
	}
	h := NewAccountHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/register",
		`{"name":"Alice","email":"alice@example.com","password":"`+long+`","mobile":"5551234567"}`)
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 from register, got %v", err)
	}
	if msg, _ := he.Message.(string); msg != "password must be at most 72 bytes" {
		t.Fatalf("unexpected message %q", msg)
	}

	c, _ = newJSONContext(http.MethodPost, "/reset-password",
		`{"token":"abc","new_password":"`+long+`","confirm_password":"`+long+`"}`)
	err = h.ResetPassword(c)
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 from reset, got %v", err)
	}
	if msg, _ := he.Message.(string); msg != "new_password must be at most 72 bytes" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAccountHandler_ResetPassword_ForwardsFields(t *testing.T) {
	var got ports.CompleteResetInput
	stub := &stubAccountService{
		completeFn: func(_ context.Context, in ports.CompleteResetInput) error {
			got = in
			return nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/reset-password",
		`{"token":"abc","new_password":"n1","confirm_password":"n2"}`)

	if err := NewAccountHandler(stub).ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Token != "abc" || got.NewPassword != "n1" || got.ConfirmPassword != "n2" {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestAdminHandler_DeleteUsers_RequiresSubject(t *testing.T) {
	stub := &stubAccountService{
		wipeFn: func(context.Context, string) (int64, error) {
			t.Fatalf("service must not be called without a subject")
			return 0, nil
		},
	}
	c, _ := newJSONContext(http.MethodDelete, "/users", "")

	err := NewAdminHandler(stub).DeleteUsers(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAdminHandler_DeleteUsers_UsesSubjectAsActor(t *testing.T) {
	stub := &stubAccountService{
		wipeFn: func(_ context.Context, actor string) (int64, error) {
			if actor != "ops" {
				t.Fatalf("unexpected actor %q", actor)
			}
			return 2, nil
		},
	}
	c, rec := newJSONContext(http.MethodDelete, "/users", "")
	c.Set(middleware.CtxSubject, "ops")

	if err := NewAdminHandler(stub).DeleteUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp wipeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", resp.Deleted)
	}
}
