package restapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/servicehub/servicehub/internal/domain"
)

func placeOrder(t *testing.T, e *echo.Echo, customerToken string, detailID int64) orderResult {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/orders/", customerToken, map[string]interface{}{
		"offer_detail_id": detailID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out orderResult
	decodeBody(t, rec, &out)
	return out
}

// makeStaffToken promotes a freshly registered user to staff and logs in
// again so the claims carry the flag.
func makeStaffToken(t *testing.T, e *echo.Echo, db *gorm.DB, username string) string {
	t.Helper()
	account := registerUser(t, e, username, domain.UserTypeCustomer)
	err := db.Model(&domain.User{}).Where("id = ?", account.UserID).
		Update("is_staff", true).Error
	require.NoError(t, err)
	rec := doJSON(t, e, http.MethodPost, "/api/login/", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out authResult
	decodeBody(t, rec, &out)
	return out.Token
}

func TestCreateOrder(t *testing.T) {
	e, _ := setupServer(t)
	biz := registerUser(t, e, "beth", domain.UserTypeBusiness)
	customer := registerUser(t, e, "carl", domain.UserTypeCustomer)
	offer := createTestOffer(t, e, biz.Token, "logo design")

	detail := offer.Details[1]
	order := placeOrder(t, e, customer.Token, detail.ID)

	assert.Equal(t, customer.UserID, order.CustomerUser)
	assert.Equal(t, biz.UserID, order.BusinessUser)
	assert.Equal(t, detail.Title, order.Title)
	assert.Equal(t, detail.Price, order.Price)
	assert.Equal(t, "standard", order.OfferType)
	assert.Equal(t, domain.OrderStatusInProgress, order.Status)
}

func TestCreateOrderPermissions(t *testing.T) {
	e, _ := setupServer(t)
	biz := registerUser(t, e, "beth", domain.UserTypeBusiness)
	offer := createTestOffer(t, e, biz.Token, "logo design")

	rec := doJSON(t, e, http.MethodPost, "/api/orders/", "", map[string]interface{}{
		"offer_detail_id": offer.Details[0].ID,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// business accounts cannot place orders
	rec = doJSON(t, e, http.MethodPost, "/api/orders/", biz.Token, map[string]interface{}{
		"offer_detail_id": offer.Details[0].ID,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateOrderMissingDetail(t *testing.T) {
	e, _ := setupServer(t)
	customer := registerUser(t, e, "carl", domain.UserTypeCustomer)

	rec := doJSON(t, e, http.MethodPost, "/api/orders/", customer.Token, map[string]interface{}{
		"offer_detail_id": 123456,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "The offer detail does not exist.", body["detail"])

	rec = doJSON(t, e, http.MethodPost, "/api/orders/", customer.Token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersScopedToParticipants(t *testing.T) {
	e, _ := setupServer(t)
	biz := registerUser(t, e, "beth", domain.UserTypeBusiness)
	customer := registerUser(t, e, "carl", domain.UserTypeCustomer)
	bystander := registerUser(t, e, "zoe", domain.UserTypeCustomer)
	offer := createTestOffer(t, e, biz.Token, "logo design")
	placeOrder(t, e, customer.Token, offer.Details[0].ID)

	for token, want := range map[string]int{
		customer.Token:  1,
		biz.Token:       1,
		bystander.Token: 0,
	} {
		rec := doJSON(t, e, http.MethodGet, "/api/orders/", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var orders []orderResult
		decodeBody(t, rec, &orders)
		assert.Len(t, orders, want)
	}
}

func TestPatchOrderStatus(t *testing.T) {
	e, _ := setupServer(t)
	biz := registerUser(t, e, "beth", domain.UserTypeBusiness)
	customer := registerUser(t, e, "carl", domain.UserTypeCustomer)
	offer := createTestOffer(t, e, biz.Token, "logo design")
	order := placeOrder(t, e, customer.Token, offer.Details[0].ID)

	path := fmt.Sprintf("/api/orders/%d/", order.ID)

	// only the business side may transition status
	rec := doJSON(t, e, http.MethodPatch, path, customer.Token, map[string]string{
		"status": domain.OrderStatusCompleted,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, e, http.MethodPatch, path, biz.Token, map[string]string{
		"status": "shipped",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPatch, path, biz.Token, map[string]string{
		"status": domain.OrderStatusCompleted,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out orderResult
	decodeBody(t, rec, &out)
	assert.Equal(t, domain.OrderStatusCompleted, out.Status)
}

func TestDeleteOrderStaffOnly(t *testing.T) {
	e, db := setupServer(t)
	biz := registerUser(t, e, "beth", domain.UserTypeBusiness)
	customer := registerUser(t, e, "carl", domain.UserTypeCustomer)
	offer := createTestOffer(t, e, biz.Token, "logo design")
	order := placeOrder(t, e, customer.Token, offer.Details[0].ID)

	path := fmt.Sprintf("/api/orders/%d/", order.ID)
	rec := doJSON(t, e, http.MethodDelete, path, biz.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	staff := makeStaffToken(t, e, db, "moderator")
	rec = doJSON(t, e, http.MethodDelete, path, staff, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	db.Model(&domain.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestOrderCounts(t *testing.T) {
	e, _ := setupServer(t)
	biz := registerUser(t, e, "beth", domain.UserTypeBusiness)
	customer := registerUser(t, e, "carl", domain.UserTypeCustomer)
	offer := createTestOffer(t, e, biz.Token, "logo design")

	first := placeOrder(t, e, customer.Token, offer.Details[0].ID)
	placeOrder(t, e, customer.Token, offer.Details[1].ID)

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/api/orders/%d/", first.ID),
		biz.Token, map[string]string{"status": domain.OrderStatusCompleted})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet,
		fmt.Sprintf("/api/order-count/%d/", biz.UserID), customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var counts map[string]int64
	decodeBody(t, rec, &counts)
	assert.EqualValues(t, 2, counts["order_count"])

	rec = doJSON(t, e, http.MethodGet,
		fmt.Sprintf("/api/completed-order-count/%d/", biz.UserID), customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &counts)
	assert.EqualValues(t, 1, counts["completed_order_count"])
}

func TestOrderCountRequiresBusinessUser(t *testing.T) {
	e, _ := setupServer(t)
	customer := registerUser(t, e, "carl", domain.UserTypeCustomer)

	rec := doJSON(t, e, http.MethodGet,
		fmt.Sprintf("/api/order-count/%d/", customer.UserID), customer.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/order-count/987654/", customer.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
