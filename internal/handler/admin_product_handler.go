package handler

import (
	"net/http"

	"scatch/internal/config"
	"scatch/internal/domain/model"
	"scatch/internal/middleware"
	"scatch/internal/repository"
	"scatch/internal/service"
	"scatch/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SuccessResponse は Success { message: string } の形に寄せます。
type SuccessResponse struct {
	Message string `json:"message"`
}

type ProductCreateRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        int64   `json:"price"`
	Category     string  `json:"category"`
	MaterialType string  `json:"material_type"`
	StockCount   int64   `json:"stock_count"`
	ImageURL     *string `json:"image_url"`
	IsVegan      bool    `json:"is_vegan"`
}

// 部分更新。送られてこなかったフィールドは触らない。
type ProductUpdateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Price        *int64  `json:"price"`
	Category     *string `json:"category"`
	MaterialType *string `json:"material_type"`
	StockCount   *int64  `json:"stock_count"`
	ImageURL     *string `json:"image_url"`
	IsVegan      *bool   `json:"is_vegan"`
}

type ImageUploadResponse struct {
	ImageURL string `json:"image_url"`
}

// /admin/products をまとめる
type AdminProductHandler struct {
	uc       *usecase.ProductUsecase
	uploader service.ImageUploader
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, uploader service.ImageUploader) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, uploader: uploader}
}

// オーナー専用を登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, profileRepo repository.ProfileRepository) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(profileRepo))
	admin.Use(middleware.OwnerRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.PATCH("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/images", h.uploadImage)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	created, err := h.uc.Create(c.Request().Context(), actor, usecase.CreateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		MaterialType: req.MaterialType,
		StockCount:   req.StockCount,
		ImageURL:     req.ImageURL,
		IsVegan:      req.IsVegan,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	updated, err := h.uc.Update(c.Request().Context(), actor, c.Param("id"), usecase.UpdateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		MaterialType: req.MaterialType,
		StockCount:   req.StockCount,
		ImageURL:     req.ImageURL,
		IsVegan:      req.IsVegan,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// multipart/form-data の file をCloudinaryへ上げて公開URLを返す。
// 返ったURLをProductCreate/Updateのimage_urlに渡して使う。
func (h *AdminProductHandler) uploadImage(c echo.Context) error {
	if h.uploader == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "image upload disabled"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file required"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
	}
	defer src.Close()

	url, err := h.uploader.Upload(c.Request().Context(), src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
	}

	return c.JSON(http.StatusOK, ImageUploadResponse{ImageURL: url})
}

//middleware.AuthJWT が c.Set した値から操作者を組み立てる

func getProfileIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxProfileIDKey)
	if v == nil {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

func getActor(c echo.Context) (usecase.Actor, bool) {
	id, ok := getProfileIDFromContext(c)
	if !ok {
		return usecase.Actor{}, false
	}

	role, ok := c.Get(middleware.CtxRoleKey).(string)
	if !ok || role == "" {
		return usecase.Actor{}, false
	}

	return usecase.Actor{ProfileID: id, Role: model.Role(role)}, true
}
