package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vavastapak/account-service/internal/core/ports"
)

// AdminHandler serves the operator endpoints. Routes are mounted behind the
// Auth and RBAC middleware.
type AdminHandler struct {
	service ports.AccountService
}

func NewAdminHandler(service ports.AccountService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers returns every account without secrets.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listAccountsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	if _, err := ctxSubject(c); err != nil {
		return err
	}

	accounts, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}

	resp := listAccountsResponse{Users: make([]accountResponse, 0, len(accounts))}
	for _, a := range accounts {
		resp.Users = append(resp.Users, accountResponse{
			ID:     a.ID,
			Name:   a.Name,
			Email:  a.Email,
			Mobile: a.Mobile,
			Role:   a.Role,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteUsers removes every account. Refused unless wiping is enabled.
//
// @Summary      Delete all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wipeResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users [delete]
func (h *AdminHandler) DeleteUsers(c echo.Context) error {
	actor, err := ctxSubject(c)
	if err != nil {
		return err
	}

	n, err := h.service.WipeAccounts(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wipeResponse{Message: "All users deleted successfully", Deleted: n})
}
