package restapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/internal/events"
	"github.com/servicehub/servicehub/internal/webserver"
	"github.com/servicehub/servicehub/pkg/common"
)

func registerAuthRoutes() {
	webserver.ApiPOST("/registration/", registration)
	webserver.ApiPOST("/login/", login)
}

type registrationPayload struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
	Type             string `json:"type"`
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

func buildAuthResponse(c echo.Context, user *domain.User, status int) error {
	cfg := webserver.GetAppContext(c).Config()
	token, err := webserver.IssueToken(user, cfg.Web.JwtSecret,
		time.Duration(cfg.Web.JwtExpireHours)*time.Hour)
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to issue token.")
	}
	return c.JSON(status, authResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		UserID:   user.ID,
	})
}

func registration(c echo.Context) error {
	var payload registrationPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse registration payload.")
	}

	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)

	if payload.Username == "" {
		return fieldError(c, http.StatusBadRequest, "username", "This field is required.")
	}
	if payload.Email == "" || !strings.Contains(payload.Email, "@") {
		return fieldError(c, http.StatusBadRequest, "email", "Enter a valid email address.")
	}
	if payload.Password == "" {
		return fieldError(c, http.StatusBadRequest, "password", "This field is required.")
	}
	if !domain.ValidUserType(payload.Type) {
		return fieldError(c, http.StatusBadRequest, "type", "Type must be 'customer' or 'business'.")
	}

	db := GetDB(c)
	var count int64
	db.Model(&domain.User{}).Where("email = ?", payload.Email).Count(&count)
	if count > 0 {
		return fieldError(c, http.StatusBadRequest, "email", "This e-mail address is already taken!")
	}
	db.Model(&domain.User{}).Where("username = ?", payload.Username).Count(&count)
	if count > 0 {
		return fieldError(c, http.StatusBadRequest, "username", "This username is already taken!")
	}
	if payload.Password != payload.RepeatedPassword {
		return fieldError(c, http.StatusBadRequest, "password", "The passwords don't match!")
	}

	hashed, err := common.HashPassword(payload.Password)
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to create user.")
	}

	user := domain.User{
		ID:        common.UUIDint64(),
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  hashed,
		Type:      payload.Type,
		IsActive:  true,
		LastLogin: time.Now(),
	}

	// The user and its empty profile land together or not at all
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&domain.UserProfile{
			ID:     common.UUIDint64(),
			UserID: user.ID,
		}).Error
	})
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to create user.")
	}

	events.Publish(events.TopicUserRegistered, events.Action{
		Username: user.Username,
		Detail:   "registered as " + user.Type,
		RemoteIP: c.RealIP(),
	})

	return buildAuthResponse(c, &user, http.StatusCreated)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse login payload.")
	}
	if payload.Username == "" {
		return fieldError(c, http.StatusBadRequest, "username", "This field is required.")
	}
	if payload.Password == "" {
		return fieldError(c, http.StatusBadRequest, "password", "This field is required.")
	}

	db := GetDB(c)
	var user domain.User
	if err := db.Where("username = ?", payload.Username).First(&user).Error; err != nil {
		return detailError(c, http.StatusBadRequest, "Invalid username or password.")
	}
	if !common.CheckPassword(user.Password, payload.Password) {
		return detailError(c, http.StatusBadRequest, "Invalid username or password.")
	}
	if !user.IsActive {
		return detailError(c, http.StatusBadRequest, "This account is not active.")
	}

	db.Model(&domain.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())

	return buildAuthResponse(c, &user, http.StatusOK)
}
