package restapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/internal/webserver"
)

func registerProfileRoutes() {
	webserver.ApiGET("/profile/:id/", getProfile)
	webserver.ApiPATCH("/profile/:id/", patchProfile)
	webserver.ApiGET("/profiles/business/", listBusinessProfiles)
	webserver.ApiGET("/profiles/customer/", listCustomerProfiles)
}

// profileDetailResult is the full per-user profile representation
type profileDetailResult struct {
	User         int64     `json:"user"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	File         string    `json:"file"`
	Location     string    `json:"location"`
	Tel          string    `json:"tel"`
	Description  string    `json:"description"`
	WorkingHours string    `json:"working_hours"`
	Type         string    `json:"type"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

type businessProfileResult struct {
	User         int64  `json:"user"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	File         string `json:"file"`
	Location     string `json:"location"`
	Tel          string `json:"tel"`
	Description  string `json:"description"`
	WorkingHours string `json:"working_hours"`
	Type         string `json:"type"`
}

type customerProfileResult struct {
	User       int64     `json:"user"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	File       string    `json:"file"`
	UploadedAt time.Time `json:"uploaded_at"`
	Type       string    `json:"type"`
}

func profileDetailResponse(p *domain.UserProfile, u *domain.User) profileDetailResult {
	return profileDetailResult{
		User:         u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		File:         p.File,
		Location:     p.Location,
		Tel:          p.Tel,
		Description:  p.Description,
		WorkingHours: p.WorkingHours,
		Type:         u.Type,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
	}
}

func loadProfile(c echo.Context) (*domain.UserProfile, *domain.User, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, nil, notFound(c, "Profile not found.")
	}
	db := GetDB(c)
	var profile domain.UserProfile
	if err := db.Where("user_id = ?", id).First(&profile).Error; err != nil {
		return nil, nil, notFound(c, "Profile not found.")
	}
	var user domain.User
	if err := db.Where("id = ?", profile.UserID).First(&user).Error; err != nil {
		return nil, nil, notFound(c, "Profile not found.")
	}
	return &profile, &user, nil
}

func getProfile(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}
	profile, user, errResp := loadProfile(c)
	if errResp != nil {
		return errResp
	}
	return c.JSON(http.StatusOK, profileDetailResponse(profile, user))
}

type profilePatchPayload struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	Location     *string `json:"location"`
	Tel          *string `json:"tel"`
	Description  *string `json:"description"`
	WorkingHours *string `json:"working_hours"`
	File         *string `json:"file"`
}

func patchProfile(c echo.Context) error {
	claims := currentUser(c)
	if claims == nil {
		return unauthorized(c)
	}
	profile, user, errResp := loadProfile(c)
	if errResp != nil {
		return errResp
	}
	if user.ID != claims.UserID {
		return forbidden(c, "You do not have permission to edit this profile.")
	}

	var payload profilePatchPayload
	if err := c.Bind(&payload); err != nil {
		return detailError(c, http.StatusBadRequest, "Unable to parse profile payload.")
	}

	db := GetDB(c)
	if payload.Email != nil {
		email := strings.TrimSpace(*payload.Email)
		if email == "" || !strings.Contains(email, "@") {
			return fieldError(c, http.StatusBadRequest, "email", "Enter a valid email address.")
		}
		var count int64
		db.Model(&domain.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
		if count > 0 {
			return fieldError(c, http.StatusBadRequest, "email", "This e-mail address is already taken!")
		}
		user.Email = email
	}
	if payload.FirstName != nil {
		user.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		user.LastName = *payload.LastName
	}
	if payload.Location != nil {
		profile.Location = *payload.Location
	}
	if payload.Tel != nil {
		profile.Tel = *payload.Tel
	}
	if payload.Description != nil {
		profile.Description = *payload.Description
	}
	if payload.WorkingHours != nil {
		profile.WorkingHours = *payload.WorkingHours
	}
	if payload.File != nil {
		profile.File = *payload.File
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		user.UpdatedAt = time.Now()
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		profile.UpdatedAt = time.Now()
		return tx.Save(profile).Error
	})
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to update profile.")
	}

	return c.JSON(http.StatusOK, profileDetailResponse(profile, user))
}

// listRoleProfiles loads every profile whose user carries the given type
func listRoleProfiles(c echo.Context, userType string) ([]domain.UserProfile, error) {
	var profiles []domain.UserProfile
	err := GetDB(c).Preload("User").
		Joins("JOIN sys_user ON sys_user.id = user_profile.user_id").
		Where("sys_user.type = ?", userType).
		Find(&profiles).Error
	return profiles, err
}

func listBusinessProfiles(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}
	profiles, err := listRoleProfiles(c, domain.UserTypeBusiness)
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query profiles.")
	}
	results := make([]businessProfileResult, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if p.User == nil {
			continue
		}
		results = append(results, businessProfileResult{
			User:         p.User.ID,
			Username:     p.User.Username,
			FirstName:    p.User.FirstName,
			LastName:     p.User.LastName,
			File:         p.File,
			Location:     p.Location,
			Tel:          p.Tel,
			Description:  p.Description,
			WorkingHours: p.WorkingHours,
			Type:         p.User.Type,
		})
	}
	return c.JSON(http.StatusOK, results)
}

func listCustomerProfiles(c echo.Context) error {
	if currentUser(c) == nil {
		return unauthorized(c)
	}
	profiles, err := listRoleProfiles(c, domain.UserTypeCustomer)
	if err != nil {
		return detailError(c, http.StatusInternalServerError, "Failed to query profiles.")
	}
	results := make([]customerProfileResult, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if p.User == nil {
			continue
		}
		results = append(results, customerProfileResult{
			User:       p.User.ID,
			Username:   p.User.Username,
			FirstName:  p.User.FirstName,
			LastName:   p.User.LastName,
			File:       p.File,
			UploadedAt: p.User.CreatedAt,
			Type:       p.User.Type,
		})
	}
	return c.JSON(http.StatusOK, results)
}
