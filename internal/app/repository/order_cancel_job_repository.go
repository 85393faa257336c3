package repository

import (
	"time"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderCancelJobRepository interface {
	Create(job *model.OrderCancelJob) error
	FindByOrderID(orderID uint) (*model.OrderCancelJob, error)
	FindDue(now time.Time, limit int) ([]model.OrderCancelJob, error)
	MarkProcessed(id uint, at time.Time) error
	RecordFailure(id uint, cause error, retryAt time.Time) error
	WithTx(tx *gorm.DB) OrderCancelJobRepository
}

type orderCancelJobRepository struct {
	db *gorm.DB
}

func NewOrderCancelJobRepository(db *gorm.DB) OrderCancelJobRepository {
	return &orderCancelJobRepository{db: db}
}

func (r *orderCancelJobRepository) WithTx(tx *gorm.DB) OrderCancelJobRepository {
	return &orderCancelJobRepository{db: tx}
}

func (r *orderCancelJobRepository) Create(job *model.OrderCancelJob) error {
	if err := r.db.Create(job).Error; err != nil {
		logger.Error("Failed to create order cancel job in database", err, map[string]interface{}{
			"order_id": job.OrderID,
		})
		return err
	}

	logger.Debug("Order cancel job created in database", map[string]interface{}{
		"job_id":   job.ID,
		"order_id": job.OrderID,
		"due_at":   job.DueAt,
	})
	return nil
}

func (r *orderCancelJobRepository) FindByOrderID(orderID uint) (*model.OrderCancelJob, error) {
	var job model.OrderCancelJob
	if err := r.db.Where("order_id = ?", orderID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindDue returns unprocessed jobs whose due time has passed and whose retry
// time, if any, has arrived. Jobs that failed fewer times come first, so a
// job that keeps failing cannot hold the batch.
func (r *orderCancelJobRepository) FindDue(now time.Time, limit int) ([]model.OrderCancelJob, error) {
	var jobs []model.OrderCancelJob
	err := r.db.Where("processed_at IS NULL AND due_at <= ?", now).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("attempts ASC, due_at ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		logger.Error("Failed to find due order cancel jobs in database", err)
		return nil, err
	}
	return jobs, nil
}

func (r *orderCancelJobRepository) MarkProcessed(id uint, at time.Time) error {
	err := r.db.Model(&model.OrderCancelJob{}).
		Where("id = ? AND processed_at IS NULL", id).
		Updates(map[string]interface{}{
			"processed_at": at,
			"attempts":     gorm.Expr("attempts + 1"),
		}).Error
	if err != nil {
		logger.Error("Failed to mark order cancel job processed", err, map[string]interface{}{
			"job_id": id,
		})
		return err
	}
	return nil
}

// RecordFailure leaves the job pending until retryAt
func (r *orderCancelJobRepository) RecordFailure(id uint, cause error, retryAt time.Time) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	err := r.db.Model(&model.OrderCancelJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      msg,
			"next_attempt_at": retryAt,
		}).Error
	if err != nil {
		logger.Error("Failed to record order cancel job failure", err, map[string]interface{}{
			"job_id": id,
		})
		return err
	}
	return nil
}
