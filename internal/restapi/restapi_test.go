package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/servicehub/servicehub/config"
	"github.com/servicehub/servicehub/internal/app"
	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/internal/webserver"
)

// setupServer wires a fresh echo instance and an isolated in-memory
// database for one test.
func setupServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	cfg := &config.AppConfig{}
	*cfg = *config.DefaultAppConfig
	cfg.Web.JwtSecret = "test-secret"
	cfg.Logger.FileEnable = false

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	application := app.NewApplication(cfg)
	application.OverrideDB(db)

	server := webserver.Init(application)
	Init()
	return server.Echo(), db
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

type authResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

// registerUser creates an account through the public API and returns its
// token and id.
func registerUser(t *testing.T, e *echo.Echo, username, userType string) authResult {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/registration/", "", map[string]string{
		"username":          username,
		"email":             username + "@example.com",
		"password":          "secret123",
		"repeated_password": "secret123",
		"type":              userType,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out authResult
	decodeBody(t, rec, &out)
	require.NotEmpty(t, out.Token)
	return out
}

// createTestOffer publishes a complete three-tier offer for a business token
func createTestOffer(t *testing.T, e *echo.Echo, token, title string) offerWriteResult {
	t.Helper()
	details := make([]map[string]interface{}, 0, 3)
	for i, tier := range []string{"basic", "standard", "premium"} {
		details = append(details, map[string]interface{}{
			"title":                 fmt.Sprintf("%s %s", title, tier),
			"revisions":             i + 1,
			"delivery_time_in_days": (i + 1) * 3,
			"price":                 float64(50 * (i + 1)),
			"features":              []string{"feature A", "feature B"},
			"offer_type":            tier,
		})
	}
	rec := doJSON(t, e, http.MethodPost, "/api/offers/", token, map[string]interface{}{
		"title":       title,
		"image":       "",
		"description": "test offer",
		"details":     details,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out offerWriteResult
	decodeBody(t, rec, &out)
	require.Len(t, out.Details, 3)
	return out
}
