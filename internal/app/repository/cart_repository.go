package repository

import (
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(item *model.CartItem) error
	FindByUserID(userID uint) ([]model.CartItem, error)
	FindSelectedByUserID(userID uint) ([]model.CartItem, error)
	FindByID(id uint) (*model.CartItem, error)
	FindByUserGoodsAttrs(userID, goodsID uint, attrsText string) (*model.CartItem, error)
	Update(item *model.CartItem) error
	UpdateSelectedByUserID(userID uint, selected bool) error
	DeleteByIDs(userID uint, ids []uint) (int64, error)
	DeleteByUserID(userID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"user_id":  item.UserID,
		"goods_id": item.GoodsID,
		"count":    item.Count,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"user_id":  item.UserID,
			"goods_id": item.GoodsID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindByUserID(userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.Preload("Goods").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart items found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
	})
	return items, nil
}

func (r *cartRepository) FindSelectedByUserID(userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.Preload("Goods").
		Where("user_id = ? AND selected = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find selected cart items in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) FindByID(id uint) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.Preload("Goods").First(&item, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart item by ID in database", err, map[string]interface{}{
				"cart_item_id": id,
			})
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindByUserGoodsAttrs(userID, goodsID uint, attrsText string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("user_id = ? AND goods_id = ? AND attrs_text = ?", userID, goodsID, attrsText).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) Update(item *model.CartItem) error {
	err := r.db.Model(item).Select("count", "selected", "attrs_text").Updates(item).Error
	if err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}

	logger.Debug("Cart item updated in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"count":        item.Count,
		"selected":     item.Selected,
	})
	return nil
}

func (r *cartRepository) UpdateSelectedByUserID(userID uint, selected bool) error {
	err := r.db.Model(&model.CartItem{}).
		Where("user_id = ?", userID).
		Update("selected", selected).Error
	if err != nil {
		logger.Error("Failed to update cart selection in database", err, map[string]interface{}{
			"user_id":  userID,
			"selected": selected,
		})
		return err
	}
	return nil
}

// DeleteByIDs removes only rows owned by userID and returns how many were removed
func (r *cartRepository) DeleteByIDs(userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart items in database", result.Error, map[string]interface{}{
			"user_id": userID,
			"count":   len(ids),
		})
		return 0, result.Error
	}

	logger.Debug("Cart items deleted from database", map[string]interface{}{
		"user_id": userID,
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *cartRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
