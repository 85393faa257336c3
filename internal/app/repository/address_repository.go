package repository

import (
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddressRepository interface {
	Create(address *model.Address) error
	FindByUserID(userID uint) ([]model.Address, error)
	FindByID(id uint) (*model.Address, error)
	FindDefaultByUserID(userID uint) (*model.Address, error)
	Update(address *model.Address) error
	Delete(id uint) error
	ClearDefault(userID, exceptID uint) error
	SetDefault(userID, addressID uint) error
	LockOwner(userID uint) error
	WithTx(tx *gorm.DB) AddressRepository
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) WithTx(tx *gorm.DB) AddressRepository {
	return &addressRepository{db: tx}
}

func (r *addressRepository) Create(address *model.Address) error {
	logger.Debug("Creating address in database", map[string]interface{}{
		"user_id":    address.UserID,
		"receiver":   address.Receiver,
		"is_default": address.IsDefault,
	})

	if err := r.db.Create(address).Error; err != nil {
		logger.Error("Failed to create address in database", err, map[string]interface{}{
			"user_id":  address.UserID,
			"receiver": address.Receiver,
		})
		return err
	}

	logger.Debug("Address created in database", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
	})
	return nil
}

func (r *addressRepository) FindByUserID(userID uint) ([]model.Address, error) {
	logger.Debug("Finding addresses by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var addresses []model.Address
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&addresses).Error
	if err != nil {
		logger.Error("Failed to find addresses by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Addresses found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

func (r *addressRepository) FindByID(id uint) (*model.Address, error) {
	var address model.Address
	if err := r.db.First(&address, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find address by ID in database", err, map[string]interface{}{
				"address_id": id,
			})
		}
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) FindDefaultByUserID(userID uint) (*model.Address, error) {
	var address model.Address
	err := r.db.Where("user_id = ? AND is_default = ?", userID, true).First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) Update(address *model.Address) error {
	logger.Debug("Updating address in database", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
		"is_default": address.IsDefault,
	})

	if err := r.db.Save(address).Error; err != nil {
		logger.Error("Failed to update address in database", err, map[string]interface{}{
			"address_id": address.ID,
			"user_id":    address.UserID,
		})
		return err
	}
	return nil
}

func (r *addressRepository) Delete(id uint) error {
	logger.Debug("Deleting address from database", map[string]interface{}{
		"address_id": id,
	})

	if err := r.db.Delete(&model.Address{}, id).Error; err != nil {
		logger.Error("Failed to delete address from database", err, map[string]interface{}{
			"address_id": id,
		})
		return err
	}
	return nil
}

// ClearDefault unsets the default flag on every address of userID except exceptID.
// Pass exceptID 0 to clear all of them.
func (r *addressRepository) ClearDefault(userID, exceptID uint) error {
	query := r.db.Model(&model.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}

	if err := query.Update("is_default", false).Error; err != nil {
		logger.Error("Failed to clear default address", err, map[string]interface{}{
			"user_id":   userID,
			"except_id": exceptID,
		})
		return err
	}
	return nil
}

// SetDefault makes addressID the only default address of userID
func (r *addressRepository) SetDefault(userID, addressID uint) error {
	logger.Debug("Setting default address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := r.WithTx(tx)
		if err := txRepo.LockOwner(userID); err != nil {
			return err
		}
		if err := txRepo.ClearDefault(userID, addressID); err != nil {
			return err
		}

		result := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)
		if result.Error != nil {
			logger.Error("Failed to set address as default", result.Error, map[string]interface{}{
				"user_id":    userID,
				"address_id": addressID,
			})
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// LockOwner row-locks the user so default-address changes for one user run
// one at a time. Call it inside a transaction before reading the default.
func (r *addressRepository) LockOwner(userID uint) error {
	var user model.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, userID).Error
	if err != nil {
		logger.Error("Failed to lock address owner", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
