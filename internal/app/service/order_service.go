package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPayTimeout      = 30 * time.Minute
	defaultCancelBatchSize = 100
	cancelJobSavepoint     = "order_cancel_job"
	cancelRetryBase        = 30 * time.Second
	cancelRetryMax         = 10 * time.Minute
	autoCancelReason       = "payment timeout"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrOrderNotCancellable   = errors.New("order cannot be cancelled")
	ErrOrderNotPayable       = errors.New("order cannot be paid")
	ErrEmptyCartSelection    = errors.New("no cart items selected")
	ErrInvalidOrderRequest   = errors.New("invalid order request")
)

// OrderEvent is published after every order state change
type OrderEvent struct {
	Type        string            `json:"type"`
	UserID      uint              `json:"user_id"`
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      model.OrderStatus `json:"status"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

const (
	OrderEventCreated   = "order.created"
	OrderEventPaid      = "order.paid"
	OrderEventCancelled = "order.cancelled"
)

type OrderNotifier interface {
	NotifyOrder(event OrderEvent)
}

type OrderLineInput struct {
	GoodsID   uint
	Count     int
	AttrsText string
}

type SubmitOrderInput struct {
	UserID           uint
	AddressID        uint
	DeliveryTimeType model.DeliveryTimeType
	PayType          model.PayType
	PayChannel       int
	BuyerMessage     string
	Goods            []OrderLineInput
	// FromCart builds the lines from the user's selected cart items and
	// removes those items when the order commits. Goods is ignored.
	FromCart bool
}

type OrderConfig struct {
	PayTimeout      time.Duration
	CancelBatchSize int
}

// OrderDetail is an order plus its shipping snapshot and payment deadline
type OrderDetail struct {
	*model.Order
	ReceiverContact string    `json:"receiver_contact"`
	ReceiverMobile  string    `json:"receiver_mobile"`
	ReceiverAddress string    `json:"receiver_address"`
	PayLatestTime   time.Time `json:"pay_latest_time"`
	Countdown       int64     `json:"countdown"` // seconds until auto-cancel
}

type OrderPage struct {
	Items    []model.Order `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type OrderService interface {
	SubmitOrder(ctx context.Context, input SubmitOrderInput) (*model.Order, error)
	GetPreOrder(userID uint) (*OrderPreview, error)
	GetPreOrderNow(userID, goodsID uint, count int, attrsText string, addressID uint) (*OrderPreview, error)
	GetRepurchasePreview(userID, orderID uint) (*OrderPreview, error)
	GetOrderDetail(userID, orderID uint) (*OrderDetail, error)
	ListOrders(userID uint, status model.OrderStatus, page, pageSize int) (*OrderPage, error)
	CancelOrder(userID, orderID uint, reason string) (*model.Order, error)
	PayOrder(userID, orderID uint) (*model.Order, error)
	ProcessDueCancellations(ctx context.Context, now time.Time) (int, error)
	ExportOrders(userID uint) ([]byte, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	jobRepo     repository.OrderCancelJobRepository
	goodsRepo   repository.GoodsRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	notifier    OrderNotifier
	cfg         OrderConfig
	now         func() time.Time
}

// NewOrderService builds the order service. notifier may be nil.
func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	jobRepo repository.OrderCancelJobRepository,
	goodsRepo repository.GoodsRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	notifier OrderNotifier,
	cfg OrderConfig,
) OrderService {
	if cfg.PayTimeout <= 0 {
		cfg.PayTimeout = defaultPayTimeout
	}
	if cfg.CancelBatchSize <= 0 {
		cfg.CancelBatchSize = defaultCancelBatchSize
	}
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		jobRepo:     jobRepo,
		goodsRepo:   goodsRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		notifier:    notifier,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *orderService) SubmitOrder(ctx context.Context, input SubmitOrderInput) (*model.Order, error) {
	if input.UserID == 0 || input.AddressID == 0 {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidOrderRequest)
	}
	if !input.FromCart {
		if len(input.Goods) == 0 {
			return nil, fmt.Errorf("%w: no goods", ErrInvalidOrderRequest)
		}
		for _, line := range input.Goods {
			if line.GoodsID == 0 || line.Count <= 0 {
				return nil, fmt.Errorf("%w: goods %d count %d", ErrInvalidOrderRequest, line.GoodsID, line.Count)
			}
		}
	}
	if input.DeliveryTimeType == 0 {
		input.DeliveryTimeType = model.DeliveryAnyTime
	}
	if input.PayType == 0 {
		input.PayType = model.PayTypeOnline
	}

	logger.Info("Submitting order", map[string]interface{}{
		"user_id":    input.UserID,
		"address_id": input.AddressID,
		"from_cart":  input.FromCart,
		"lines":      len(input.Goods),
	})

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		goodsRepo := s.goodsRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		if _, err := s.findOwnedAddress(s.addressRepo.WithTx(tx), input.UserID, input.AddressID); err != nil {
			return err
		}

		lines := input.Goods
		var cartIDs []uint
		if input.FromCart {
			selected, err := cartRepo.FindSelectedByUserID(input.UserID)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				return ErrEmptyCartSelection
			}
			lines = make([]OrderLineInput, 0, len(selected))
			for _, item := range selected {
				lines = append(lines, OrderLineInput{GoodsID: item.GoodsID, Count: item.Count, AttrsText: item.AttrsText})
				cartIDs = append(cartIDs, item.ID)
			}
		}

		order = &model.Order{
			UserID:           input.UserID,
			AddressID:        input.AddressID,
			OrderNumber:      uuid.New().String(),
			DeliveryTimeType: input.DeliveryTimeType,
			PayType:          input.PayType,
			PayChannel:       input.PayChannel,
			BuyerMessage:     input.BuyerMessage,
			Status:           model.OrderStatusAwaitingPayment,
			CreatedAt:        s.now(),
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		s.registerCancelJob(tx, order)

		totalPrice := decimal.Zero
		totalFreight := decimal.Zero
		totalCount := 0
		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			goods, err := goodsRepo.FindByID(line.GoodsID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", ErrGoodsNotFound, line.GoodsID)
				}
				return err
			}
			if line.Count > goods.Inventory {
				return fmt.Errorf("%w: %s", ErrInsufficientInventory, goods.Name)
			}
			ok, err := goodsRepo.DecrementInventory(goods.ID, line.Count)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientInventory, goods.Name)
			}

			item := model.OrderItem{
				OrderID:   order.ID,
				GoodsID:   goods.ID,
				Name:      goods.Name,
				Cover:     goods.Cover,
				Price:     goods.Price,
				Freight:   goods.Freight,
				Count:     line.Count,
				AttrsText: line.AttrsText,
			}
			totalPrice = totalPrice.Add(item.LineTotal())
			totalFreight = totalFreight.Add(item.Freight)
			totalCount += item.Count
			items = append(items, item)
		}

		if err := orderRepo.CreateItems(items); err != nil {
			return err
		}

		order.TotalPrice = totalPrice.Round(2)
		order.TotalFreight = totalFreight.Round(2)
		order.TotalCount = totalCount
		if err := orderRepo.UpdateTotals(order.ID, order.TotalPrice, order.TotalFreight, order.TotalCount); err != nil {
			return err
		}
		order.OrderItems = items

		if len(cartIDs) > 0 {
			if _, err := cartRepo.DeleteByIDs(input.UserID, cartIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Order submission rolled back", map[string]interface{}{
			"user_id": input.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	logger.Info("Order submitted", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total_price":  order.TotalPrice.StringFixed(2),
		"total_count":  order.TotalCount,
	})
	s.publish(OrderEventCreated, order)
	return order, nil
}

// registerCancelJob records the auto-cancel deadline inside a savepoint.
// A failure is logged and rolled back without failing the order.
func (s *orderService) registerCancelJob(tx *gorm.DB, order *model.Order) {
	if err := tx.SavePoint(cancelJobSavepoint).Error; err != nil {
		logger.Error("Failed to create savepoint for cancel job", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}

	job := &model.OrderCancelJob{
		OrderID: order.ID,
		DueAt:   order.CreatedAt.Add(s.cfg.PayTimeout),
	}
	if err := s.jobRepo.WithTx(tx).Create(job); err != nil {
		logger.Error("Failed to schedule order auto-cancel", err, map[string]interface{}{
			"order_id": order.ID,
		})
		if rbErr := tx.RollbackTo(cancelJobSavepoint).Error; rbErr != nil {
			logger.Error("Failed to roll back cancel job savepoint", rbErr, map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}
}

func (s *orderService) findOwnedAddress(repo repository.AddressRepository, userID, addressID uint) (*model.Address, error) {
	address, err := repo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *orderService) findOwnedOrder(repo repository.OrderRepository, userID, orderID uint) (*model.Order, error) {
	order, err := repo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order access by non-owner", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetOrderDetail(userID, orderID uint) (*OrderDetail, error) {
	order, err := s.findOwnedOrder(s.orderRepo, userID, orderID)
	if err != nil {
		return nil, err
	}

	address, err := s.addressRepo.FindByID(order.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order references missing address", map[string]interface{}{
				"order_id":   order.ID,
				"address_id": order.AddressID,
			})
			return nil, ErrAddressNotFound
		}
		return nil, err
	}

	detail := &OrderDetail{
		Order:           order,
		ReceiverContact: address.Receiver,
		ReceiverMobile:  address.Contact,
		ReceiverAddress: address.Address,
		PayLatestTime:   order.CreatedAt.Add(s.cfg.PayTimeout),
	}
	if order.Status == model.OrderStatusAwaitingPayment {
		detail.Countdown = paymentCountdown(detail.PayLatestTime, s.now())
	}
	return detail, nil
}

// paymentCountdown is the whole seconds left before deadline, never negative
func paymentCountdown(deadline, now time.Time) int64 {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

func (s *orderService) ListOrders(userID uint, status model.OrderStatus, page, pageSize int) (*OrderPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	orders, total, err := s.orderRepo.FindByUserID(userID, repository.OrderQuery{
		Status: status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}
	return &OrderPage{
		Items:    orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// CancelOrder cancels an order still awaiting payment and puts its goods
// back on the shelf. The pending auto-cancel job is closed.
func (s *orderService) CancelOrder(userID, orderID uint, reason string) (*model.Order, error) {
	now := s.now()
	var order *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		var err error
		order, err = s.findOwnedOrder(orderRepo, userID, orderID)
		if err != nil {
			return err
		}

		ok, err := orderRepo.TransitionStatus(order.ID, model.OrderStatusAwaitingPayment, model.OrderStatusCancelled, map[string]interface{}{
			"cancel_time":   now,
			"cancel_reason": reason,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderNotCancellable
		}

		if err := s.restoreInventory(s.goodsRepo.WithTx(tx), order.OrderItems); err != nil {
			return err
		}
		return s.closeCancelJob(s.jobRepo.WithTx(tx), order.ID, now)
	})
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusCancelled
	order.CancelTime = &now
	order.CancelReason = reason
	logger.Info("Order cancelled by user", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
	})
	s.publish(OrderEventCancelled, order)
	return order, nil
}

// PayOrder confirms payment. It races safely with auto-cancel through the
// conditional status transition.
func (s *orderService) PayOrder(userID, orderID uint) (*model.Order, error) {
	now := s.now()
	var order *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		var err error
		order, err = s.findOwnedOrder(orderRepo, userID, orderID)
		if err != nil {
			return err
		}

		ok, err := orderRepo.TransitionStatus(order.ID, model.OrderStatusAwaitingPayment, model.OrderStatusPaid, map[string]interface{}{
			"pay_time": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderNotPayable
		}
		return s.closeCancelJob(s.jobRepo.WithTx(tx), order.ID, now)
	})
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusPaid
	order.PayTime = &now
	logger.Info("Order paid", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
	})
	s.publish(OrderEventPaid, order)
	return order, nil
}

// ProcessDueCancellations cancels every order whose payment window closed
// before now. Jobs are marked processed even when the order already left
// awaiting payment, so a job delivered twice is a no-op. A failed job is
// recorded and held back with exponential backoff.
func (s *orderService) ProcessDueCancellations(ctx context.Context, now time.Time) (int, error) {
	jobs, err := s.jobRepo.FindDue(now, s.cfg.CancelBatchSize)
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	logger.Debug("Processing due order cancellations", map[string]interface{}{
		"jobs": len(jobs),
	})

	cancelled := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return cancelled, err
		}

		order, err := s.cancelDue(ctx, job, now)
		if err != nil {
			logger.Error("Failed to auto-cancel order", err, map[string]interface{}{
				"job_id":   job.ID,
				"order_id": job.OrderID,
			})
			if recErr := s.jobRepo.RecordFailure(job.ID, err, now.Add(cancelRetryDelay(job.Attempts))); recErr != nil {
				logger.Error("Failed to record cancel job failure", recErr, map[string]interface{}{
					"job_id": job.ID,
				})
			}
			continue
		}
		if order != nil {
			cancelled++
			s.publish(OrderEventCancelled, order)
		}
	}

	if cancelled > 0 {
		logger.Info("Orders auto-cancelled", map[string]interface{}{
			"cancelled": cancelled,
			"jobs":      len(jobs),
		})
	}
	return cancelled, nil
}

// cancelRetryDelay doubles from cancelRetryBase per prior attempt, capped at cancelRetryMax
func cancelRetryDelay(attempts int) time.Duration {
	delay := cancelRetryBase
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= cancelRetryMax {
			return cancelRetryMax
		}
	}
	return delay
}

// cancelDue returns the cancelled order, or nil when the guard did not match
func (s *orderService) cancelDue(ctx context.Context, job model.OrderCancelJob, now time.Time) (*model.Order, error) {
	var cancelled *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		order, err := orderRepo.FindByID(job.OrderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if order != nil {
			ok, err := orderRepo.TransitionStatus(order.ID, model.OrderStatusAwaitingPayment, model.OrderStatusCancelled, map[string]interface{}{
				"cancel_time":   now,
				"cancel_reason": autoCancelReason,
			})
			if err != nil {
				return err
			}
			if ok {
				if err := s.restoreInventory(s.goodsRepo.WithTx(tx), order.OrderItems); err != nil {
					return err
				}
				order.Status = model.OrderStatusCancelled
				order.CancelTime = &now
				order.CancelReason = autoCancelReason
				cancelled = order
			}
		}

		return s.jobRepo.WithTx(tx).MarkProcessed(job.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *orderService) restoreInventory(goodsRepo repository.GoodsRepository, items []model.OrderItem) error {
	for _, item := range items {
		if err := goodsRepo.RestoreInventory(item.GoodsID, item.Count); err != nil {
			return err
		}
	}
	return nil
}

// closeCancelJob marks the auto-cancel job done. Orders without a job are fine.
func (s *orderService) closeCancelJob(jobRepo repository.OrderCancelJobRepository, orderID uint, at time.Time) error {
	job, err := jobRepo.FindByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if job.ProcessedAt != nil {
		return nil
	}
	return jobRepo.MarkProcessed(job.ID, at)
}

func (s *orderService) publish(eventType string, order *model.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyOrder(OrderEvent{
		Type:        eventType,
		UserID:      order.UserID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		OccurredAt:  s.now(),
	})
}
