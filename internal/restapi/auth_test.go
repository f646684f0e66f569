package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicehub/servicehub/internal/domain"
)

func TestRegistrationCreatesUserAndProfile(t *testing.T) {
	e, db := setupServer(t)

	out := registerUser(t, e, "anna", domain.UserTypeBusiness)
	assert.Equal(t, "anna", out.Username)
	assert.Equal(t, "anna@example.com", out.Email)
	assert.NotZero(t, out.UserID)

	var user domain.User
	require.NoError(t, db.Where("id = ?", out.UserID).First(&user).Error)
	assert.Equal(t, domain.UserTypeBusiness, user.Type)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.Password)

	var profile domain.UserProfile
	require.NoError(t, db.Where("user_id = ?", out.UserID).First(&profile).Error)
}

func TestRegistrationValidation(t *testing.T) {
	e, _ := setupServer(t)
	registerUser(t, e, "taken", domain.UserTypeCustomer)

	tests := []struct {
		name    string
		payload map[string]string
		field   string
	}{
		{
			name: "duplicate email",
			payload: map[string]string{
				"username": "other", "email": "taken@example.com",
				"password": "x", "repeated_password": "x", "type": "customer",
			},
			field: "email",
		},
		{
			name: "duplicate username",
			payload: map[string]string{
				"username": "taken", "email": "fresh@example.com",
				"password": "x", "repeated_password": "x", "type": "customer",
			},
			field: "username",
		},
		{
			name: "password mismatch",
			payload: map[string]string{
				"username": "other", "email": "other@example.com",
				"password": "x", "repeated_password": "y", "type": "customer",
			},
			field: "password",
		},
		{
			name: "invalid type",
			payload: map[string]string{
				"username": "other", "email": "other@example.com",
				"password": "x", "repeated_password": "x", "type": "wizard",
			},
			field: "type",
		},
		{
			name: "missing username",
			payload: map[string]string{
				"email":    "other@example.com",
				"password": "x", "repeated_password": "x", "type": "customer",
			},
			field: "username",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/api/registration/", "", tc.payload)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var body map[string][]string
			decodeBody(t, rec, &body)
			assert.Contains(t, body, tc.field)
		})
	}
}

func TestLogin(t *testing.T) {
	e, _ := setupServer(t)
	registerUser(t, e, "bob", domain.UserTypeCustomer)

	rec := doJSON(t, e, http.MethodPost, "/api/login/", "", map[string]string{
		"username": "bob", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out authResult
	decodeBody(t, rec, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "bob", out.Username)
}

func TestLoginBadCredentials(t *testing.T) {
	e, _ := setupServer(t)
	registerUser(t, e, "bob", domain.UserTypeCustomer)

	rec := doJSON(t, e, http.MethodPost, "/api/login/", "", map[string]string{
		"username": "bob", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/login/", "", map[string]string{
		"username": "nobody", "password": "whatever",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	e, db := setupServer(t)
	out := registerUser(t, e, "sleepy", domain.UserTypeCustomer)
	require.NoError(t, db.Model(&domain.User{}).
		Where("id = ?", out.UserID).Update("is_active", false).Error)

	rec := doJSON(t, e, http.MethodPost, "/api/login/", "", map[string]string{
		"username": "sleepy", "password": "secret123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "This account is not active.", body["detail"])
}
