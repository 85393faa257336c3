package repository

import (
	"time"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderItemBatchSize = 100

// OrderQuery pages a user's orders. Empty Status matches all, Limit <= 0 returns every row.
type OrderQuery struct {
	Status model.OrderStatus
	Limit  int
	Offset int
}

type OrderRepository interface {
	Create(order *model.Order) error
	CreateItems(items []model.OrderItem) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint, query OrderQuery) ([]model.Order, int64, error)
	UpdateTotals(id uint, totalPrice, totalFreight decimal.Decimal, totalCount int) error
	TransitionStatus(id uint, from, to model.OrderStatus, fields map[string]interface{}) (bool, error)
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"address_id":   order.AddressID,
		"order_number": order.OrderNumber,
	})

	// header only, line items are written by CreateItems
	if err := r.db.Omit("OrderItems").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":      order.UserID,
			"order_number": order.OrderNumber,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) CreateItems(items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	if err := r.db.CreateInBatches(&items, orderItemBatchSize).Error; err != nil {
		logger.Error("Failed to create order items in database", err, map[string]interface{}{
			"order_id": items[0].OrderID,
			"count":    len(items),
		})
		return err
	}

	logger.Debug("Order items created in database", map[string]interface{}{
		"order_id": items[0].OrderID,
		"count":    len(items),
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint, query OrderQuery) ([]model.Order, int64, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
		"status":  query.Status,
		"limit":   query.Limit,
		"offset":  query.Offset,
	})

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if query.Status != "" {
			db = db.Where("status = ?", query.Status)
		}
		return db
	}

	var total int64
	if err := r.db.Model(&model.Order{}).Scopes(filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count orders in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	page := r.preloadOrder().Scopes(filter).Order("created_at DESC, id DESC")
	if query.Limit > 0 {
		page = page.Limit(query.Limit).Offset(query.Offset)
	}

	var orders []model.Order
	if err := page.Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
		"total":   total,
	})
	return orders, total, nil
}

func (r *orderRepository) UpdateTotals(id uint, totalPrice, totalFreight decimal.Decimal, totalCount int) error {
	err := r.db.Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_price":   totalPrice,
		"total_freight": totalFreight,
		"total_count":   totalCount,
	}).Error
	if err != nil {
		logger.Error("Failed to update order totals in database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}

	logger.Debug("Order totals updated in database", map[string]interface{}{
		"order_id":      id,
		"total_price":   totalPrice.StringFixed(2),
		"total_freight": totalFreight.StringFixed(2),
		"total_count":   totalCount,
	})
	return nil
}

// TransitionStatus moves the order from one status to another only if it
// is still in from. It reports whether a row changed; false means another
// writer got there first and nothing was touched.
func (r *orderRepository) TransitionStatus(id uint, from, to model.OrderStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(updates)
	if result.Error != nil {
		logger.Error("Failed to transition order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"from":     from,
			"to":       to,
		})
		return false, result.Error
	}

	logger.Debug("Order status transition attempted", map[string]interface{}{
		"order_id": id,
		"from":     from,
		"to":       to,
		"applied":  result.RowsAffected == 1,
	})
	return result.RowsAffected == 1, nil
}
