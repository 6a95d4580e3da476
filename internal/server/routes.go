package server

import (
	"scatch/internal/config"
	"scatch/internal/handler"
	"scatch/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlersはルート登録に必要なハンドラ一式。
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProfile *handler.AdminProfileHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, profileRepo repository.ProfileRepository, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, cfg, profileRepo)
	h.Cart.RegisterRoutes(e, cfg, profileRepo)
	h.Order.RegisterRoutes(e, cfg, profileRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, profileRepo)
	h.AdminProfile.RegisterRoutes(e, cfg, profileRepo)
}
