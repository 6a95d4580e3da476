package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"os"
	"time"

	"scatch/internal/config"
	"scatch/internal/middleware"
	auth "scatch/internal/usecase/auth"
	"scatch/internal/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC   *auth.RegisterUsecase
	loginUC      *auth.LoginUsecase
	refreshUC    *auth.RefreshUsecase
	logoutUC     *auth.LogoutUsecase
	sessionUC    *auth.SessionUsecase
	cfg          config.Config
	refreshTTL   time.Duration // refresh/csrf cookie の有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUsecase,
	loginUC *auth.LoginUsecase,
	refreshUC *auth.RefreshUsecase,
	logoutUC *auth.LogoutUsecase,
	sessionUC *auth.SessionUsecase,
	cfg config.Config,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		refreshUC:    refreshUC,
		logoutUC:     logoutUC,
		sessionUC:    sessionUC,
		cfg:          cfg,
		refreshTTL:   refreshTTL,
		cookieSecure: envBool("COOKIE_SECURE", true),
	}
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	FullName             string `json:"full_name"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/me のレスポンス。未ログインならaccountはnull。
type meResponse struct {
	Account interface{} `json:"account"`
}

// /auth を登録
func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me)
}

// registerはPOST /auth/registerのハンドラ。
// 登録成功でそのままログイン状態（token＋Cookie）を返す。
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	form := validator.RegisterForm{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		FullName:             req.FullName,
	}
	if err := form.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, side, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.FullName,
		UserAgent:   c.Request().UserAgent(),
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidEmailFormat, auth.ErrPasswordTooShort, auth.ErrWeakPassword:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case auth.ErrEmailAlreadyExists:
			return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	if err := h.setSessionCookies(c, side.PlainRefreshToken); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusCreated, out)
}

// loginはPOST /auth/login のハンドラ。
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	form := validator.LoginForm{Email: req.Email, Password: req.Password}
	if err := form.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		case auth.ErrProfileInactive:
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	if err := h.setSessionCookies(c, side.PlainRefreshToken); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	//JSONレスポンス（account + token）
	return c.JSON(http.StatusOK, out)
}

// refreshはPOST /auth/refresh のハンドラ。
// refresh Cookieを回転させて新しいaccess tokenを返す。
// CSRFはdouble submit方式（csrf_token Cookie == X-CSRF-Token ヘッダ）。
func (h *AuthHandler) refresh(c echo.Context) error {
	if !h.csrfOK(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "csrf mismatch"})
	}

	cookie, err := c.Cookie("refresh")
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, side, err := h.refreshUC.Execute(c.Request().Context(), cookie.Value, c.Request().UserAgent())
	if err != nil {
		h.clearSessionCookies(c)
		switch err {
		case auth.ErrInvalidCredentials, auth.ErrSecurityIncident:
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		case auth.ErrProfileInactive:
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	if err := h.setSessionCookies(c, side.PlainRefreshToken); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, out)
}

// logoutはPOST /auth/logout のハンドラ。
// 全refresh tokenを失効し、token_versionを上げて全端末ログアウトにする。
func (h *AuthHandler) logout(c echo.Context) error {
	if !h.csrfOK(c) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "csrf mismatch"})
	}

	claims, err := h.bearerClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.logoutUC.Execute(c.Request().Context(), claims.ProfileID); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// meはGET /auth/me のハンドラ。
// tokenが無い・壊れている・失効していてもエラーにせず account: null を返す。
// 画面初期化時のセッション確認に使う。
func (h *AuthHandler) me(c echo.Context) error {
	claims, err := h.bearerClaims(c)
	if err != nil {
		return c.JSON(http.StatusOK, meResponse{Account: nil})
	}

	profile := h.sessionUC.Check(c.Request().Context(), claims.ProfileID, claims.TokenVersion)
	if profile == nil {
		return c.JSON(http.StatusOK, meResponse{Account: nil})
	}

	return c.JSON(http.StatusOK, meResponse{Account: profile})
}

// Authorizationヘッダからclaimsを取り出す。
func (h *AuthHandler) bearerClaims(c echo.Context) (middleware.AccessClaims, error) {
	authz := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authz) <= len(prefix) {
		return middleware.AccessClaims{}, echo.ErrUnauthorized
	}
	return middleware.ParseAccessToken(h.cfg.JWTSecret, authz[len(prefix):])
}

// csrf_token Cookie と X-CSRF-Token ヘッダの一致を見る。
func (h *AuthHandler) csrfOK(c echo.Context) bool {
	cookie, err := c.Cookie("csrf_token")
	if err != nil || cookie.Value == "" {
		return false
	}
	return cookie.Value == c.Request().Header.Get("X-CSRF-Token")
}

// refresh＋csrf Cookieをまとめてセット。
func (h *AuthHandler) setSessionCookies(c echo.Context, plainRefresh string) error {
	exp := time.Now().Add(h.refreshTTL)

	c.SetCookie(&http.Cookie{
		Name:     "refresh",
		Value:    plainRefresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})

	csrfToken, err := generateSecureToken(32)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     "csrf_token",
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})

	return nil
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	for _, name := range []string{"refresh", "csrf_token"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: name == "refresh",
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// ランダム文字列を作る。
func generateSecureToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 32
	}

	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
