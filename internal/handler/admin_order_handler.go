package handler

import (
	"net/http"

	"scatch/internal/config"
	"scatch/internal/middleware"
	"scatch/internal/repository"
	"scatch/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/ordersのHTTP
type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

// DI
func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// /admin/orders を登録
func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, profileRepo repository.ProfileRepository) {
	g := e.Group("/admin/orders")

	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(profileRepo))
	g.Use(middleware.OwnerRoleGuard())

	g.GET("", h.list)
	g.PATCH("/:id/status", h.updateStatus)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListAll(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
