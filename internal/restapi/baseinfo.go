package restapi

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/internal/webserver"
)

func registerBaseInfoRoutes() {
	webserver.ApiGET("/base-info/", getBaseInfo)
}

type baseInfoResult struct {
	ReviewCount          int64   `json:"review_count"`
	AverageRating        float64 `json:"average_rating"`
	BusinessProfileCount int64   `json:"business_profile_count"`
	OfferCount           int64   `json:"offer_count"`
}

// getBaseInfo serves the public aggregate statistics of the marketplace
func getBaseInfo(c echo.Context) error {
	db := GetDB(c)

	var out baseInfoResult
	if err := db.Model(&domain.Review{}).Count(&out.ReviewCount).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query statistics.")
	}
	if out.ReviewCount > 0 {
		var avg float64
		if err := db.Model(&domain.Review{}).
			Select("AVG(rating)").Scan(&avg).Error; err != nil {
			return detailError(c, http.StatusInternalServerError, "Failed to query statistics.")
		}
		out.AverageRating = math.Round(avg*10) / 10
	}
	if err := db.Model(&domain.User{}).
		Where("type = ?", domain.UserTypeBusiness).Count(&out.BusinessProfileCount).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query statistics.")
	}
	if err := db.Model(&domain.Offer{}).Count(&out.OfferCount).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query statistics.")
	}

	return c.JSON(http.StatusOK, out)
}
