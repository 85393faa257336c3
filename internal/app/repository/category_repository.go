package repository

import (
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("sort ASC, id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories in database", err)
		return nil, err
	}

	logger.Debug("Categories listed in database", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find category by ID in database", err, map[string]interface{}{
				"category_id": id,
			})
		}
		return nil, err
	}
	return &category, nil
}
