package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"scatch/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxProfileIDKey    = "profile_id"    // string (uuid)
	CtxRoleKey         = "role"          // string
	CtxTokenVersionKey = "token_version" // int
)

// アクセストークンのclaims
type AccessClaims struct {
	ProfileID    string
	Role         string
	TokenVersion int
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := ParseAccessToken(cfg.JWTSecret, rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxProfileIDKey, claims.ProfileID)
			c.Set(CtxRoleKey, claims.Role)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

// アクセストークンをパース・検証してclaimsを返す。
// HS256以外の署名方式は拒否する。
func ParseAccessToken(secret string, rawToken string) (AccessClaims, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return AccessClaims{}, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, errors.New("invalid claims")
	}

	//profile_id（sub）を取り出す
	profileID, err := parseString(mapClaims["sub"])
	if err != nil || profileID == "" {
		return AccessClaims{}, errors.New("invalid sub")
	}

	//roleを取り出す（customer/owner）
	role, err := parseString(mapClaims["role"])
	if err != nil || role == "" {
		return AccessClaims{}, errors.New("invalid role")
	}

	//token_versionを取り出す
	tv, err := parseInt(mapClaims["tv"])
	if err != nil || tv < 0 {
		return AccessClaims{}, errors.New("invalid tv")
	}

	return AccessClaims{ProfileID: profileID, Role: role, TokenVersion: tv}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}
