package restapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/internal/webserver"
	"github.com/servicehub/servicehub/pkg/common"
)

func registerOfferRoutes() {
	webserver.ApiGET("/offers/", listOffers)
	webserver.ApiPOST("/offers/", createOffer)
	webserver.ApiGET("/offers/:id/", getOffer)
	webserver.ApiPUT("/offers/:id/", updateOffer)
	webserver.ApiPATCH("/offers/:id/", patchOffer)
	webserver.ApiDELETE("/offers/:id/", deleteOffer)
	webserver.ApiGET("/offerdetails/:id/", getOfferDetail)
}

type offerDetailPayload struct {
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays int      `json:"delivery_time_in_days"`
	Price              float64  `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

type offerPayload struct {
	Title       string               `json:"title"`
	Image       string               `json:"image"`
	Description string               `json:"description"`
	Details     []offerDetailPayload `json:"details"`
}

type offerDetailResult struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays int      `json:"delivery_time_in_days"`
	Price              float64  `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

type offerWriteResult struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Image       string              `json:"image"`
	Description string              `json:"description"`
	Details     []offerDetailResult `json:"details"`
}

type offerDetailRef struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type offerUserDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

type offerReadResult struct {
	ID              int64             `json:"id"`
	User            int64             `json:"user"`
	Title           string            `json:"title"`
	Image           string            `json:"image"`
	Description     string            `json:"description"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Details         []offerDetailRef  `json:"details"`
	MinPrice        *float64          `json:"min_price"`
	MinDeliveryTime *int              `json:"min_delivery_time"`
	UserDetails     *offerUserDetails `json:"user_details,omitempty"`
}

func detailResult(d *domain.OfferDetail) offerDetailResult {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return offerDetailResult{
		ID:                 d.ID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price,
		Features:           features,
		OfferType:          d.OfferType,
	}
}

func offerWriteResponse(offer *domain.Offer) offerWriteResult {
	out := offerWriteResult{
		ID:          offer.ID,
		Title:       offer.Title,
		Image:       offer.Image,
		Description: offer.Description,
		Details:     make([]offerDetailResult, 0, len(offer.Details)),
	}
	for i := range offer.Details {
		out.Details = append(out.Details, detailResult(&offer.Details[i]))
	}
	return out
}

// offerReadResponse builds the nested read shape. The min_price and
// min_delivery_time fields honor the active filter thresholds the same way
// the list filters do.
func offerReadResponse(c echo.Context, offer *domain.Offer, withUser bool) offerReadResult {
	out := offerReadResult{
		ID:          offer.ID,
		User:        offer.CreatorID,
		Title:       offer.Title,
		Image:       offer.Image,
		Description: offer.Description,
		CreatedAt:   offer.CreatedAt,
		UpdatedAt:   offer.UpdatedAt,
		Details:     make([]offerDetailRef, 0, len(offer.Details)),
	}
	for i := range offer.Details {
		d := &offer.Details[i]
		out.Details = append(out.Details, offerDetailRef{
			ID:  d.ID,
			URL: fmt.Sprintf("/api/offerdetails/%d/", d.ID),
		})
	}
	out.MinPrice = computeMinPrice(c, offer.Details)
	out.MinDeliveryTime = computeMinDeliveryTime(c, offer.Details)
	if withUser && offer.Creator != nil {
		out.UserDetails = &offerUserDetails{
			FirstName: offer.Creator.FirstName,
			LastName:  offer.Creator.LastName,
			Username:  offer.Creator.Username,
		}
	}
	return out
}

func computeMinPrice(c echo.Context, details []domain.OfferDetail) *float64 {
	if len(details) == 0 {
		return nil
	}
	param := c.QueryParam("min_price")
	var threshold *float64
	if param != "" {
		if v, err := cast.ToFloat64E(param); err == nil {
			threshold = &v
		}
	}
	var out *float64
	for i := range details {
		price := details[i].Price
		if threshold != nil && price < *threshold {
			continue
		}
		if out == nil || price < *out {
			p := price
			out = &p
		}
	}
	return out
}

func computeMinDeliveryTime(c echo.Context, details []domain.OfferDetail) *int {
	if len(details) == 0 {
		return nil
	}
	param := c.QueryParam("max_delivery_time")
	if param != "" {
		if threshold, err := cast.ToIntE(param); err == nil {
			// longest delivery time still inside the requested window
			var out *int
			for i := range details {
				days := details[i].DeliveryTimeInDays
				if days > threshold {
					continue
				}
				if out == nil || days > *out {
					d := days
					out = &d
				}
			}
			return out
		}
	}
	var out *int
	for i := range details {
		days := details[i].DeliveryTimeInDays
		if out == nil || days < *out {
			d := days
			out = &d
		}
	}
	return out
}

// validateDetailSet checks the one-basic/one-standard/one-premium invariant
func validateDetailSet(details []offerDetailPayload) error {
	if len(details) != len(domain.OfferTypes) {
		return errors.New("An Offer must have exactly one basic, one standard, and one premium detail.")
	}
	seen := map[string]bool{}
	for _, d := range details {
		if !domain.ValidOfferType(d.OfferType) || seen[d.OfferType] {
			return errors.New("An Offer must have exactly one basic, one standard, and one premium detail.")
		}
		seen[d.OfferType] = true
	}
	return nil
}

func listOffers(c echo.Context) error {
	db := GetDB(c)
	cfg := webserver.GetAppContext(c).Config()
	page, pageSize := parsePagination(c, cfg.Web.PageSize)

	base := db.Model(&domain.Offer{})

	if v := c.QueryParam("creator_id"); v != "" {
		base = base.Where("creator_id = ?", cast.ToInt64(v))
	}
	if v := c.QueryParam("min_price"); v != "" {
		if price, err := cast.ToFloat64E(v); err == nil {
			base = base.Where("EXISTS (SELECT 1 FROM offer_details WHERE offer_details.offer_id = offers.id AND offer_details.price <= ?)", price)
		}
	}
	if v := c.QueryParam("max_delivery_time"); v != "" {
		if days, err := cast.ToIntE(v); err == nil {
			base = base.Where("EXISTS (SELECT 1 FROM offer_details WHERE offer_details.offer_id = offers.id AND offer_details.delivery_time_in_days <= ?)", days)
		}
	}
	if term := strings.TrimSpace(c.QueryParam("search")); term != "" {
		titleCond, titleArg := likeFilter(db, "offers.title", term)
		descCond, descArg := likeFilter(db, "offers.description", term)
		base = base.Where(db.Where(titleCond, titleArg).Or(descCond, descArg))
	}

	switch c.QueryParam("ordering") {
	case "updated_at":
		base = base.Order("offers.updated_at ASC")
	case "-updated_at":
		base = base.Order("offers.updated_at DESC")
	case "min_price":
		base = base.Order("(SELECT MIN(price) FROM offer_details WHERE offer_details.offer_id = offers.id) ASC")
	case "-min_price":
		base = base.Order("(SELECT MIN(price) FROM offer_details WHERE offer_details.offer_id = offers.id) DESC")
	default:
		base = base.Order("offers.id DESC")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query offers.")
	}

	var offers []domain.Offer
	if err := base.Preload("Details").Preload("Creator").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&offers).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query offers.")
	}

	results := make([]offerReadResult, 0, len(offers))
	for i := range offers {
		results = append(results, offerReadResponse(c, &offers[i], true))
	}
	return paged(c, results, total, page, pageSize)
}

func createOffer(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	if claims.UserType != domain.UserTypeBusiness {
		return forbidden(c, "Only business users can create offers.")
	}

	var payload offerPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse offer payload.")
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		return fieldError(c, http.StatusBadRequest, "title", "This field is required.")
	}
	if err := validateDetailSet(payload.Details); err != nil {
		return fieldError(c, http.StatusBadRequest, "details", err.Error())
	}

	offer := domain.Offer{
		ID:          common.UUIDint64(),
		Title:       payload.Title,
		Image:       strings.TrimSpace(payload.Image),
		Description: payload.Description,
		CreatorID:   claims.UserID,
	}
	for _, d := range payload.Details {
		offer.Details = append(offer.Details, domain.OfferDetail{
			ID:                 common.UUIDint64(),
			OfferID:            offer.ID,
			Title:              d.Title,
			Revisions:          d.Revisions,
			DeliveryTimeInDays: d.DeliveryTimeInDays,
			Price:              d.Price,
			Features:           d.Features,
			OfferType:          d.OfferType,
		})
	}

	// Offer and its three tiers land atomically
	err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&offer).Error
	})
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to create offer.")
	}

	return c.JSON(http.StatusCreated, offerWriteResponse(&offer))
}

func loadOffer(c echo.Context, withCreator bool) (*domain.Offer, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, notFound(c, "Offer not found.")
	}
	q := GetDB(c).Preload("Details")
	if withCreator {
		q = q.Preload("Creator")
	}
	var offer domain.Offer
	if err := q.Where("id = ?", id).First(&offer).Error; err != nil {
		return nil, notFound(c, "Offer not found.")
	}
	return &offer, nil
}

func getOffer(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}
	offer, errResp := loadOffer(c, false)
	if errResp != nil {
		return errResp
	}
	return c.JSON(http.StatusOK, offerReadResponse(c, offer, false))
}

func updateOffer(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	offer, errResp := loadOffer(c, false)
	if errResp != nil {
		return errResp
	}
	if offer.CreatorID != claims.UserID {
		return forbidden(c, "Only the creator can modify this offer.")
	}

	var payload offerPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse offer payload.")
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		return fieldError(c, http.StatusBadRequest, "title", "This field is required.")
	}
	if err := validateDetailSet(payload.Details); err != nil {
		return fieldError(c, http.StatusBadRequest, "details", err.Error())
	}

	err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		offer.Title = payload.Title
		offer.Image = strings.TrimSpace(payload.Image)
		offer.Description = payload.Description
		offer.UpdatedAt = time.Now()
		if err := tx.Omit("Details").Save(offer).Error; err != nil {
			return err
		}
		for _, d := range payload.Details {
			for i := range offer.Details {
				row := &offer.Details[i]
				if row.OfferType != d.OfferType {
					continue
				}
				row.Title = d.Title
				row.Revisions = d.Revisions
				row.DeliveryTimeInDays = d.DeliveryTimeInDays
				row.Price = d.Price
				row.Features = d.Features
				if err := tx.Save(row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to update offer.")
	}

	return c.JSON(http.StatusOK, offerWriteResponse(offer))
}

type offerDetailPatch struct {
	Title              *string   `json:"title"`
	Revisions          *int      `json:"revisions"`
	DeliveryTimeInDays *int      `json:"delivery_time_in_days"`
	Price              *float64  `json:"price"`
	Features           *[]string `json:"features"`
	OfferType          string    `json:"offer_type"`
}

type offerPatchPayload struct {
	Title       *string            `json:"title"`
	Image       *string            `json:"image"`
	Description *string            `json:"description"`
	Details     []offerDetailPatch `json:"details"`
}

func patchOffer(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	offer, errResp := loadOffer(c, false)
	if errResp != nil {
		return errResp
	}
	if offer.CreatorID != claims.UserID {
		return forbidden(c, "Only the creator can modify this offer.")
	}

	var payload offerPatchPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse offer payload.")
	}

	// Each patched detail must name the tier it targets
	for _, d := range payload.Details {
		if d.OfferType == "" {
			return fieldError(c, http.StatusBadRequest, "details", "No detail found with offer_type.")
		}
		found := false
		for i := range offer.Details {
			if offer.Details[i].OfferType == d.OfferType {
				found = true
				break
			}
		}
		if !found {
			return fieldError(c, http.StatusBadRequest, "details", "No detail found with offer_type.")
		}
	}

	err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		if payload.Title != nil {
			offer.Title = strings.TrimSpace(*payload.Title)
		}
		if payload.Image != nil {
			offer.Image = strings.TrimSpace(*payload.Image)
		}
		if payload.Description != nil {
			offer.Description = *payload.Description
		}
		offer.UpdatedAt = time.Now()
		if err := tx.Omit("Details").Save(offer).Error; err != nil {
			return err
		}
		for _, d := range payload.Details {
			for i := range offer.Details {
				row := &offer.Details[i]
				if row.OfferType != d.OfferType {
					continue
				}
				if d.Title != nil {
					row.Title = *d.Title
				}
				if d.Revisions != nil {
					row.Revisions = *d.Revisions
				}
				if d.DeliveryTimeInDays != nil {
					row.DeliveryTimeInDays = *d.DeliveryTimeInDays
				}
				if d.Price != nil {
					row.Price = *d.Price
				}
				if d.Features != nil {
					row.Features = *d.Features
				}
				if err := tx.Save(row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to update offer.")
	}

	return c.JSON(http.StatusOK, offerWriteResponse(offer))
}

func deleteOffer(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	offer, errResp := loadOffer(c, false)
	if errResp != nil {
		return errResp
	}
	if offer.CreatorID != claims.UserID {
		return forbidden(c, "Only the creator can delete this offer.")
	}

	err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", offer.ID).Delete(&domain.OfferDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Offer{}, offer.ID).Error
	})
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to delete offer.")
	}
	return c.NoContent(http.StatusNoContent)
}

func getOfferDetail(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return notFound(c, "Offer detail not found.")
	}
	var detail domain.OfferDetail
	if err := GetDB(c).Where("id = ?", id).First(&detail).Error; err != nil {
		return notFound(c, "Offer detail not found.")
	}
	return c.JSON(http.StatusOK, detailResult(&detail))
}
