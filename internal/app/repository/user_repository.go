package repository

import (
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByOpenID(openID string) (*model.User, error)
	Update(user *model.User) error
	UpdateAvatar(id uint, avatarURL string) error
	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"account": user.Account,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"account": user.Account,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"account": user.Account,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
				"user_id": id,
			})
		}
		return nil, err
	}

	return &user, nil
}

// FindByOpenID returns gorm.ErrRecordNotFound for first-time users
func (r *userRepository) FindByOpenID(openID string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("open_id = ?", openID).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find user by open id in database", err)
		}
		return nil, err
	}

	logger.Debug("User found by open id in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) UpdateAvatar(id uint, avatarURL string) error {
	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("avatar", avatarURL)
	if result.Error != nil {
		logger.Error("Failed to update user avatar in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("User avatar updated in database", map[string]interface{}{
		"user_id": id,
		"avatar":  avatarURL,
	})
	return nil
}
