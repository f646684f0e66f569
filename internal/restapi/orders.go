package restapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/internal/events"
	"github.com/servicehub/servicehub/internal/webserver"
	"github.com/servicehub/servicehub/pkg/common"
)

func registerOrderRoutes() {
	webserver.ApiGET("/orders/", listOrders)
	webserver.ApiPOST("/orders/", createOrder)
	webserver.ApiPATCH("/orders/:id/", patchOrder)
	webserver.ApiDELETE("/orders/:id/", deleteOrder)
	webserver.ApiGET("/order-count/:business_id/", orderCount)
	webserver.ApiGET("/completed-order-count/:business_id/", completedOrderCount)
}

// orderResult flattens the chosen offer detail into the order representation
type orderResult struct {
	ID                 int64     `json:"id"`
	CustomerUser       int64     `json:"customer_user"`
	BusinessUser       int64     `json:"business_user"`
	Title              string    `json:"title"`
	Revisions          int       `json:"revisions"`
	DeliveryTimeInDays int       `json:"delivery_time_in_days"`
	Price              float64   `json:"price"`
	Features           []string  `json:"features"`
	OfferType          string    `json:"offer_type"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func orderResponse(order *domain.Order) orderResult {
	out := orderResult{
		ID:           order.ID,
		CustomerUser: order.CustomerUserID,
		BusinessUser: order.BusinessUserID,
		Status:       order.Status,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
		Features:     []string{},
	}
	if d := order.OfferDetail; d != nil {
		out.Title = d.Title
		out.Revisions = d.Revisions
		out.DeliveryTimeInDays = d.DeliveryTimeInDays
		out.Price = d.Price
		if d.Features != nil {
			out.Features = d.Features
		}
		out.OfferType = d.OfferType
	}
	return out
}

func listOrders(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}

	var orders []domain.Order
	err := GetDB(c).Preload("OfferDetail").
		Where("customer_user_id = ? OR business_user_id = ?", claims.UserID, claims.UserID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query orders.")
	}

	results := make([]orderResult, 0, len(orders))
	for i := range orders {
		results = append(results, orderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, results)
}

type orderCreatePayload struct {
	OfferDetailID int64 `json:"offer_detail_id"`
}

func createOrder(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	if claims.UserType != domain.UserTypeCustomer {
		return forbidden(c, "Only customers can create orders.")
	}

	var payload orderCreatePayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse order payload.")
	}
	if payload.OfferDetailID == 0 {
		return fieldError(c, http.StatusBadRequest, "offer_detail_id", "This field is required.")
	}

	db := GetDB(c)
	var detail domain.OfferDetail
	if err := db.Where("id = ?", payload.OfferDetailID).First(&detail).Error; err != nil {
		return notFound(c, "The offer detail does not exist.")
	}
	var offer domain.Offer
	if err := db.Where("id = ?", detail.OfferID).First(&offer).Error; err != nil {
		return notFound(c, "The offer detail does not exist.")
	}

	order := domain.Order{
		ID:             common.UUIDint64(),
		OfferDetailID:  detail.ID,
		CustomerUserID: claims.UserID,
		BusinessUserID: offer.CreatorID,
		Status:         domain.OrderStatusInProgress,
	}
	if err := db.Create(&order).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to create order.")
	}
	order.OfferDetail = &detail

	events.Publish(events.TopicOrderCreated, events.Action{
		Username: claims.Username,
		Detail:   fmt.Sprintf("order %d on detail %d", order.ID, detail.ID),
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusCreated, orderResponse(&order))
}

type orderPatchPayload struct {
	Status string `json:"status"`
}

func patchOrder(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return notFound(c, "Order not found")
	}
	db := GetDB(c)
	var order domain.Order
	if err := db.Preload("OfferDetail").Where("id = ?", id).First(&order).Error; err != nil {
		return notFound(c, "Order not found")
	}
	if claims.UserType != domain.UserTypeBusiness || order.BusinessUserID != claims.UserID {
		return forbidden(c, "Only the business user of this order can update it.")
	}

	var payload orderPatchPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse order payload.")
	}
	if !domain.ValidOrderStatus(payload.Status) {
		return fieldError(c, http.StatusBadRequest, "status", "Status must be one of 'in_progress', 'completed', 'cancelled'.")
	}

	order.Status = payload.Status
	order.UpdatedAt = time.Now()
	if err := db.Model(&domain.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":     order.Status,
		"updated_at": order.UpdatedAt,
	}).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to update order.")
	}

	events.Publish(events.TopicOrderUpdated, events.Action{
		Username: claims.Username,
		Detail:   fmt.Sprintf("order %d -> %s", order.ID, order.Status),
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusOK, orderResponse(&order))
}

func deleteOrder(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	if !claims.IsStaff {
		return forbidden(c, "Only staff accounts can delete orders.")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return notFound(c, "Order not found")
	}
	db := GetDB(c)
	var order domain.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		return notFound(c, "Order not found")
	}
	if err := db.Delete(&domain.Order{}, order.ID).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to delete order.")
	}
	return c.NoContent(http.StatusNoContent)
}

// loadBusinessUser resolves the business_id path param to a business account
func loadBusinessUser(c echo.Context) (*domain.User, error) {
	id, err := parseIDParam(c, "business_id")
	if err != nil {
		return nil, notFound(c, "Business user not found")
	}
	var user domain.User
	if err := GetDB(c).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(c, "Business user not found")
	}
	if !user.IsBusiness() {
		return nil, notFound(c, "User is not a business user")
	}
	return &user, nil
}

func orderCount(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}
	user, errResp := loadBusinessUser(c)
	if errResp != nil {
		return errResp
	}
	var count int64
	if err := GetDB(c).Model(&domain.Order{}).
		Where("business_user_id = ?", user.ID).Count(&count).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to count orders.")
	}
	return c.JSON(http.StatusOK, map[string]int64{"order_count": count})
}

func completedOrderCount(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}
	user, errResp := loadBusinessUser(c)
	if errResp != nil {
		return errResp
	}
	var count int64
	if err := GetDB(c).Model(&domain.Order{}).
		Where("business_user_id = ? AND status = ?", user.ID, domain.OrderStatusCompleted).
		Count(&count).Error; err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to count orders.")
	}
	return c.JSON(http.StatusOK, map[string]int64{"completed_order_count": count})
}
