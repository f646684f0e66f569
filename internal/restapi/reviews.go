package restapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/internal/events"
	"github.com/servicehub/servicehub/internal/webserver"
	"github.com/servicehub/servicehub/pkg/common"
)

func registerReviewRoutes() {
	webserver.ApiGET("/reviews/", listReviews)
	webserver.ApiPOST("/reviews/", createReview)
	webserver.ApiPATCH("/reviews/:id/", patchReview)
	webserver.ApiDELETE("/reviews/:id/", deleteReview)
}

func listReviews(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}

	base := GetDB(c).Model(&domain.Review{})
	if v := c.QueryParam("business_user_id"); v != "" {
		base = base.Where("business_user_id = ?", cast.ToInt64(v))
	}
	if v := c.QueryParam("reviewer_id"); v != "" {
		base = base.Where("reviewer_id = ?", cast.ToInt64(v))
	}

	switch c.QueryParam("ordering") {
	case "created_at":
		base = base.Order("created_at ASC")
	case "-created_at":
		base = base.Order("created_at DESC")
	case "rating":
		base = base.Order("rating ASC")
	case "-rating":
		base = base.Order("rating DESC")
	default:
		base = base.Order("id DESC")
	}

	var reviews []domain.Review
	if err := base.Find(&reviews).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query reviews.")
	}
	return c.JSON(http.StatusOK, reviews)
}

type reviewCreatePayload struct {
	BusinessUser int64  `json:"business_user"`
	Rating       int    `json:"rating"`
	Description  string `json:"description"`
}

func createReview(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	if claims.UserType != domain.UserTypeCustomer {
		return forbidden(c, "Only customers can write reviews.")
	}

	var payload reviewCreatePayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse review payload.")
	}
	if payload.BusinessUser == 0 {
		return fieldError(c, http.StatusBadRequest, "business_user", "This field is required.")
	}
	if !domain.ValidRating(payload.Rating) {
		return fieldError(c, http.StatusBadRequest, "rating", "Rating must be between 1 and 10.")
	}

	db := GetDB(c)
	var business domain.User
	if err := db.Where("id = ?", payload.BusinessUser).First(&business).Error; err != nil {
		return fieldError(c, http.StatusBadRequest, "business_user", "The business user does not exist.")
	}
	if !business.IsBusiness() {
		return fieldError(c, http.StatusBadRequest, "business_user", "The business user does not exist.")
	}

	// One review per (reviewer, business) pair
	var count int64
	db.Model(&domain.Review{}).
		Where("reviewer_id = ? AND business_user_id = ?", claims.UserID, payload.BusinessUser).
		Count(&count)
	if count > 0 {
		return fieldError(c, http.StatusBadRequest, "business_user",
			"You have already submitted a review for this business user.")
	}

	review := domain.Review{
		ID:             common.UUIDint64(),
		BusinessUserID: payload.BusinessUser,
		ReviewerID:     claims.UserID,
		Rating:         payload.Rating,
		Description:    payload.Description,
	}
	if err := db.Create(&review).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to create review.")
	}

	events.Publish(events.TopicReviewCreated, events.Action{
		Username: claims.Username,
		Detail:   fmt.Sprintf("review %d for business %d rated %d", review.ID, review.BusinessUserID, review.Rating),
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusCreated, review)
}

func loadOwnReview(c echo.Context) (*domain.Review, *webserver.TokenClaims, error) {
	claims := currentUser(c)
	if claims == nil {
		return nil, nil, unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, nil, notFound(c, "Review not found.")
	}
	var review domain.Review
	if err := GetDB(c).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, nil, notFound(c, "Review not found.")
	}
	if review.ReviewerID != claims.UserID {
		return nil, nil, forbidden(c, "Only the reviewer can modify this review.")
	}
	return &review, claims, nil
}

type reviewPatchPayload struct {
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
}

func patchReview(c echo.Context) error {
	review, _, errResp := loadOwnReview(c)
	if errResp != nil {
		return errResp
	}

	var payload reviewPatchPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse review payload.")
	}
	if payload.Rating != nil && !domain.ValidRating(*payload.Rating) {
		return fieldError(c, http.StatusBadRequest, "rating", "Rating must be between 1 and 10.")
	}

	if payload.Rating != nil {
		review.Rating = *payload.Rating
	}
	if payload.Description != nil {
		review.Description = *payload.Description
	}
	review.UpdatedAt = time.Now()
	if err := GetDB(c).Save(review).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to update review.")
	}
	return c.JSON(http.StatusOK, review)
}

func deleteReview(c echo.Context) error {
	review, claims, errResp := loadOwnReview(c)
	if errResp != nil {
		return errResp
	}
	if err := GetDB(c).Delete(&domain.Review{}, review.ID).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to delete review.")
	}

	events.Publish(events.TopicReviewDeleted, events.Action{
		Username: claims.Username,
		Detail:   fmt.Sprintf("review %d removed", review.ID),
		RemoteIP: c.RealIP(),
	})

	return c.NoContent(http.StatusNoContent)
}
