package db

import (
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the application, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Goods{},
		&model.CartItem{},
		&model.Address{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderCancelJob{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := CreateIndexes(DB); err != nil {
		logger.Error("Failed to create indexes", err)
		return err
	}

	if err := SeedCategories(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// CreateIndexes adds the indexes AutoMigrate cannot express from struct tags.
// A user has at most one live default address.
func CreateIndexes(db *gorm.DB) error {
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_user_default
		ON addresses (user_id) WHERE is_default AND deleted_at IS NULL`).Error
}

// SeedCategories inserts the top-level catalog categories when the table is empty
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	categories := []model.Category{
		{Name: "居家", Sort: 1},
		{Name: "美食", Sort: 2},
		{Name: "服饰", Sort: 3},
		{Name: "母婴", Sort: 4},
		{Name: "个护", Sort: 5},
		{Name: "严选", Sort: 6},
		{Name: "数码", Sort: 7},
		{Name: "运动", Sort: 8},
		{Name: "杂项", Sort: 9},
	}

	if err := db.Create(&categories).Error; err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_records": len(categories),
	})
	return nil
}
