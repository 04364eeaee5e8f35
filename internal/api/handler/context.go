package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vavastapak/account-service/internal/api/middleware"
)

// ctxSubject returns the authenticated operator injected by the Auth
// middleware. An empty subject means the middleware did not run, or the token
// carried no "sub" claim; either way the request is rejected with 401.
func ctxSubject(c echo.Context) (string, error) {
	subject, _ := c.Get(middleware.CtxSubject).(string)
	if subject == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return subject, nil
}
