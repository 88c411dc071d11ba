// Package users implements account management with role-based gating.
// Credentials are out of scope; the auth service owns passwords and tokens.
package users

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/teamplan/planboard/internal/models"
)

// ErrDuplicateLogin reports a login uniqueness violation.
var ErrDuplicateLogin = errors.New("login already in use")

// Store is the persistence boundary for user accounts.
type Store interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, fields map[string]any) (*models.User, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// GormStore implements Store on PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a GormStore.
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Order("last_name ASC, first_name ASC, id ASC").
		Find(&users).Error
	return users, err
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) Create(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateLogin
	}
	return err
}

func (s *GormStore) Update(ctx context.Context, id uint, fields map[string]any) (*models.User, error) {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateLogin
	}
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *GormStore) Delete(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
