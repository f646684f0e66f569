package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/servicehub/servicehub/internal/app"
	"github.com/servicehub/servicehub/internal/domain"
)

const (
	// AppContextKey stores the app.AppContext on the echo context
	AppContextKey = "servicehub_app"
	// echo-jwt stores the parsed token under this key
	tokenContextKey = "user"
)

// TokenClaims is the bearer-token payload issued at login/registration.
type TokenClaims struct {
	UserID   int64  `json:"uid,string"`
	Username string `json:"username"`
	UserType string `json:"usertype"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the given user
func IssueToken(user *domain.User, secret string, expire time.Duration) (string, error) {
	claims := TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		UserType: user.Type,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
			Issuer:    "servicehub",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GetClaims returns the verified claims of the current request, or nil when
// the request carried no valid bearer token.
func GetClaims(c echo.Context) *TokenClaims {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetAppContext returns the application context attached by Init
func GetAppContext(c echo.Context) app.AppContext {
	appCtx, _ := c.Get(AppContextKey).(app.AppContext)
	return appCtx
}
