package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SettingsForge/SettingsForge/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

const (
	whereID = "id = ?"
)

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	// Find user by username
	err := p.db.Where("username = ?", username).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	// Check if user is active
	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	// Verify password
	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	user.UpdatedAt = time.Now()
	p.db.Save(&user)

	return &user, nil
}

// CreateUser creates a new local user.
func (p *LocalProvider) CreateUser(username, email, password string, roleID uint) (*models.User, error) {
	// Check if user already exists
	var existingUser models.User

	err := p.db.Where("username = ? OR email = ?", username, email).First(&existingUser).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:    true,
		Username:  username,
		Email:     email,
		Password:  models.HashPassword(password),
		RoleID:    roleID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := p.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// ChangePassword changes a user's password.
func (p *LocalProvider) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	var user models.User
	if err := p.db.Where(whereID, userID).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	// Verify old password
	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return p.db.Model(&models.User{}).
		Where(whereID, userID).
		Update("password", models.HashPassword(newPassword)).Error
}

// ActivateUser activates a user account.
func (p *LocalProvider) ActivateUser(userID uint64) error {
	return p.db.Model(&models.User{}).
		Where(whereID, userID).
		Update("active", true).Error
}

// DeactivateUser deactivates a user account.
func (p *LocalProvider) DeactivateUser(userID uint64) error {
	return p.db.Model(&models.User{}).
		Where(whereID, userID).
		Update("active", false).Error
}

// GetUserByUsername retrieves a user by username.
func (p *LocalProvider) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := p.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
