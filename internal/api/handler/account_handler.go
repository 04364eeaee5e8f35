package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vavastapak/account-service/internal/core/ports"
	"github.com/vavastapak/account-service/internal/pkg/metrics"
)

// AccountHandler serves the public account endpoints. Service errors are
// returned unchanged and rendered by the central error handler.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	_, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Mobile:   req.Mobile,
		Role:     req.Role,
	})
	metrics.RegistrationsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// Login checks credentials.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	account, err := h.service.Authenticate(c.Request().Context(), req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		ID:      account.ID,
		Name:    account.Name,
		Role:    account.Role,
	})
}

// ForgotPassword issues a reset token and queues the reset e-mail.
//
// @Summary      Request a password reset link
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account e-mail"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /forgot-password [post]
func (h *AccountHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.service.RequestPasswordReset(c.Request().Context(), req.Email)
	metrics.PasswordResetsTotal.WithLabelValues("requested", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset link sent to " + req.Email + "."})
}

// CheckResetToken reports whether a reset link is still usable.
//
// @Summary      Check a reset token
// @Tags         password
// @Produce      json
// @Param        token  query     string  true  "Reset token"
// @Success      200    {object}  tokenStatusResponse
// @Failure      400    {object}  errorResponse
// @Router       /reset-password [get]
func (h *AccountHandler) CheckResetToken(c echo.Context) error {
	if err := h.service.CheckResetToken(c.Request().Context(), c.QueryParam("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenStatusResponse{Valid: true})
}

// ResetPassword sets a new password using a reset token.
//
// @Summary      Reset password
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /reset-password [post]
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.service.CompletePasswordReset(c.Request().Context(), ports.CompleteResetInput{
		Token:           req.Token,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	metrics.PasswordResetsTotal.WithLabelValues("completed", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password successfully reset. You can now log in."})
}

// bindAndValidate decodes the body into req and runs the struct validator.
// Bind failures are 400, validation failures 422.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
