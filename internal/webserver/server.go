package webserver

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/servicehub/servicehub/internal/app"
)

// WebServer hosts the REST API on echo
type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	appCtx app.AppContext
}

var server *WebServer

// Init builds the echo instance with the shared middleware chain. Must be
// called before any route registration.
func Init(appCtx app.AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &jsoniterSerializer{}
	e.Validator = &payloadValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(zapLoggerMiddleware())

	// Expose the application context to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	api := e.Group("/api")

	// Bearer tokens are optional at the middleware level; each handler
	// enforces its own permission predicate the way the resource demands.
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:             []byte(appCtx.Config().Web.JwtSecret),
		NewClaimsFunc:          func(c echo.Context) jwt.Claims { return new(TokenClaims) },
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	}))

	server = &WebServer{root: e, api: api, appCtx: appCtx}
	return server
}

// Instance returns the initialized server
func Instance() *WebServer {
	return server
}

// Echo exposes the underlying echo instance (used in tests)
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Start serves until the listener fails or Shutdown is called
func (s *WebServer) Start(addr string) error {
	zap.L().Info("starting web server", zap.String("listen", addr))
	err := s.root.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server start failed")
	}
	return nil
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

// ApiGET registers a GET route under /api
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers a POST route under /api
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers a PUT route under /api
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiPATCH registers a PATCH route under /api
func ApiPATCH(path string, h echo.HandlerFunc) {
	server.api.PATCH(path, h)
}

// ApiDELETE registers a DELETE route under /api
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

type jsoniterSerializer struct{}

func (jsoniterSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsoniterSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsoniter.NewDecoder(c.Request().Body).Decode(i)
	if err == io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, "empty request body").SetInternal(err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func zapLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			res := c.Response()
			zap.L().Debug("http request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()))
			return err
		}
	}
}
