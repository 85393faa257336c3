package repository

import (
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

// GoodsFilter selects a page of goods. Zero values disable a condition.
type GoodsFilter struct {
	CategoryID uint
	Recommend  bool
	Keyword    string
	Limit      int
	Offset     int
}

type GoodsRepository interface {
	FindByID(id uint) (*model.Goods, error)
	FindByIDs(ids []uint) ([]model.Goods, error)
	FindPage(filter GoodsFilter) ([]model.Goods, int64, error)
	Create(goods *model.Goods) error
	BulkCreate(goods []model.Goods, batchSize int) error
	DecrementInventory(id uint, count int) (bool, error)
	RestoreInventory(id uint, count int) error
	WithTx(tx *gorm.DB) GoodsRepository
}

type goodsRepository struct {
	db *gorm.DB
}

func NewGoodsRepository(db *gorm.DB) GoodsRepository {
	return &goodsRepository{db: db}
}

func (r *goodsRepository) WithTx(tx *gorm.DB) GoodsRepository {
	return &goodsRepository{db: tx}
}

func (r *goodsRepository) FindByID(id uint) (*model.Goods, error) {
	logger.Debug("Finding goods by ID in database", map[string]interface{}{
		"goods_id": id,
	})

	var goods model.Goods
	if err := r.db.First(&goods, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find goods by ID in database", err, map[string]interface{}{
				"goods_id": id,
			})
		}
		return nil, err
	}
	return &goods, nil
}

func (r *goodsRepository) FindByIDs(ids []uint) ([]model.Goods, error) {
	var goods []model.Goods
	if len(ids) == 0 {
		return goods, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&goods).Error; err != nil {
		logger.Error("Failed to find goods by IDs in database", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return goods, nil
}

func (r *goodsRepository) FindPage(filter GoodsFilter) ([]model.Goods, int64, error) {
	logger.Debug("Listing goods in database", map[string]interface{}{
		"category_id": filter.CategoryID,
		"recommend":   filter.Recommend,
		"keyword":     filter.Keyword,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	filterScope := func(db *gorm.DB) *gorm.DB {
		if filter.CategoryID != 0 {
			db = db.Where("category_id = ?", filter.CategoryID)
		}
		if filter.Recommend {
			db = db.Where("is_recommend = ?", true)
		}
		if filter.Keyword != "" {
			db = db.Where("name LIKE ?", "%"+filter.Keyword+"%")
		}
		return db
	}

	var total int64
	if err := r.db.Model(&model.Goods{}).Scopes(filterScope).Count(&total).Error; err != nil {
		logger.Error("Failed to count goods in database", err)
		return nil, 0, err
	}

	var goods []model.Goods
	err := r.db.Scopes(filterScope).
		Order("sales_count DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&goods).Error
	if err != nil {
		logger.Error("Failed to list goods in database", err)
		return nil, 0, err
	}

	return goods, total, nil
}

func (r *goodsRepository) Create(goods *model.Goods) error {
	if err := r.db.Create(goods).Error; err != nil {
		logger.Error("Failed to create goods in database", err, map[string]interface{}{
			"name": goods.Name,
		})
		return err
	}
	return nil
}

// BulkCreate inserts goods in batches of batchSize inside one transaction
func (r *goodsRepository) BulkCreate(goods []model.Goods, batchSize int) error {
	if len(goods) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&goods, batchSize).Error
	})
	if err != nil {
		logger.Error("Failed to bulk create goods in database", err, map[string]interface{}{
			"count":      len(goods),
			"batch_size": batchSize,
		})
		return err
	}

	logger.Info("Goods bulk created in database", map[string]interface{}{
		"count": len(goods),
	})
	return nil
}

// DecrementInventory takes count units and adds them to the sales count.
// It reports false without changing anything when fewer than count
// units remain, so concurrent buyers can never drive inventory negative.
func (r *goodsRepository) DecrementInventory(id uint, count int) (bool, error) {
	result := r.db.Model(&model.Goods{}).
		Where("id = ? AND inventory >= ?", id, count).
		UpdateColumns(map[string]interface{}{
			"inventory":   gorm.Expr("inventory - ?", count),
			"sales_count": gorm.Expr("sales_count + ?", count),
		})
	if result.Error != nil {
		logger.Error("Failed to decrement goods inventory", result.Error, map[string]interface{}{
			"goods_id": id,
			"count":    count,
		})
		return false, result.Error
	}

	logger.Debug("Goods inventory decrement attempted", map[string]interface{}{
		"goods_id": id,
		"count":    count,
		"applied":  result.RowsAffected == 1,
	})
	return result.RowsAffected == 1, nil
}

// RestoreInventory reverses DecrementInventory for a cancelled order line
func (r *goodsRepository) RestoreInventory(id uint, count int) error {
	err := r.db.Model(&model.Goods{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"inventory":   gorm.Expr("inventory + ?", count),
			"sales_count": gorm.Expr("CASE WHEN sales_count >= ? THEN sales_count - ? ELSE 0 END", count, count),
		}).Error
	if err != nil {
		logger.Error("Failed to restore goods inventory", err, map[string]interface{}{
			"goods_id": id,
			"count":    count,
		})
		return err
	}
	return nil
}
