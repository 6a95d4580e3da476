package middleware

import (
	"net/http"

	"scatch/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがownerかどうかを確認します。

func OwnerRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//customerは拒否、ownerだけ許可
			if role != string(model.RoleOwner) {
				return c.JSON(http.StatusForbidden, errorJSON("owner only"))
			}

			return next(c)
		}
	}
}
