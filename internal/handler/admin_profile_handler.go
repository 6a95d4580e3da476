package handler

import (
	"net/http"

	"scatch/internal/config"
	"scatch/internal/middleware"
	"scatch/internal/repository"
	auth "scatch/internal/usecase/auth"

	"github.com/labstack/echo/v4"
)

// /admin/profilesのHTTP。いまは強制ログアウトだけ。
type AdminProfileHandler struct {
	logoutUC *auth.LogoutUsecase
}

// DI
func NewAdminProfileHandler(logoutUC *auth.LogoutUsecase) *AdminProfileHandler {
	return &AdminProfileHandler{logoutUC: logoutUC}
}

// /admin/profiles を登録
func (h *AdminProfileHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, profileRepo repository.ProfileRepository) {
	g := e.Group("/admin/profiles")

	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(profileRepo))
	g.Use(middleware.OwnerRoleGuard())

	g.POST("/:id/force-logout", h.forceLogout)
}

// 指定アカウントを全端末からログアウトさせる
func (h *AdminProfileHandler) forceLogout(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	err := h.logoutUC.ForceLogout(c.Request().Context(), actor.Role, c.Param("id"))
	if err != nil {
		switch err {
		case auth.ErrOwnerOnly:
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "owner only"})
		case repository.ErrProfileNotFound:
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}
