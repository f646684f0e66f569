package restapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/servicehub/servicehub/internal/webserver"
)

// Init registers every REST resource on the web server. webserver.Init must
// have run first.
func Init() {
	registerAuthRoutes()
	registerOfferRoutes()
	registerOrderRoutes()
	registerReviewRoutes()
	registerProfileRoutes()
	registerBaseInfoRoutes()
}

// GetDB returns the request-scoped database handle
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetAppContext(c).DB()
}

// currentUser returns the verified token claims or nil for anonymous calls
func currentUser(c echo.Context) *webserver.TokenClaims {
	return webserver.GetClaims(c)
}

// fieldError responds with a field-keyed message list, the shape validation
// failures take on every endpoint.
func fieldError(c echo.Context, status int, field string, msgs ...string) error {
	return c.JSON(status, map[string][]string{field: msgs})
}

// detailError responds with a single detail message
func detailError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func unauthorized(c echo.Context) error {
	return detailError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
}

func forbidden(c echo.Context, msg string) error {
	return detailError(c, http.StatusForbidden, msg)
}

func notFound(c echo.Context, msg string) error {
	return detailError(c, http.StatusNotFound, msg)
}

// pagedResponse is the page-number pagination envelope
type pagedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func paged(c echo.Context, results interface{}, total int64, page, pageSize int) error {
	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	// an empty first page is fine, pages past the end are not
	if lastPage == 0 {
		lastPage = 1
	}
	if page > lastPage {
		return notFound(c, "Invalid page.")
	}
	resp := pagedResponse{Count: total, Results: results}
	if page < lastPage {
		next := pageURL(c, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		resp.Previous = &prev
	}
	return c.JSON(http.StatusOK, resp)
}

func pageURL(c echo.Context, page int) string {
	req := c.Request()
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s?%s", req.URL.Path, q.Encode())
}

const maxPageSize = 100

// parsePagination reads page and page_size query parameters
func parsePagination(c echo.Context, defaultSize int) (page, pageSize int) {
	page = cast.ToInt(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}
	pageSize = cast.ToInt(c.QueryParam("page_size"))
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// likeFilter builds a case-insensitive contains filter portable across
// postgres and sqlite
func likeFilter(db *gorm.DB, column, term string) (string, string) {
	if strings.EqualFold(db.Name(), "postgres") {
		return column + " ILIKE ?", "%" + term + "%"
	}
	return "LOWER(" + column + ") LIKE ?", "%" + strings.ToLower(term) + "%"
}
