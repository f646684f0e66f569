package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/servicehub/servicehub/internal/domain"
	"github.com/servicehub/servicehub/pkg/common"
)

// checkSuper ensures a staff admin account exists and keeps its staff and
// active flags intact. Order deletion is gated on this account class.
func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "servicehub"

	hashedPassword, err := common.HashPassword(defaultPassword)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.User
	err = a.gormDB.Where("username = ?", superUsername).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = domain.User{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Email:     "admin@localhost",
			Password:  hashedPassword,
			FirstName: "Site",
			LastName:  "Admin",
			Type:      domain.UserTypeCustomer,
			IsStaff:   true,
			IsActive:  true,
			LastLogin: time.Now(),
		}
		if err := a.gormDB.Create(&admin).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
			return
		}
		if err := a.gormDB.Create(&domain.UserProfile{
			ID:     common.UUIDint64(),
			UserID: admin.ID,
		}).Error; err != nil {
			zap.L().Error("failed to create admin profile", zap.Error(err))
		}
		zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetStaff := !admin.IsStaff
	resetActive := !admin.IsActive

	if !resetPassword && !resetStaff && !resetActive {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetStaff {
		updates["is_staff"] = true
	}
	if resetActive {
		updates["is_active"] = true
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("staffReset", resetStaff),
		zap.Bool("activeReset", resetActive))
}
