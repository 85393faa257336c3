package service

import (
	"errors"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound      = errors.New("address not found")
	ErrDefaultAddressExists = errors.New("default address already exists")
)

type AddressInput struct {
	Receiver     string
	Contact      string
	ProvinceCode string
	CityCode     string
	CountyCode   string
	Address      string
	FullLocation string
	IsDefault    bool
}

type AddressService interface {
	ListAddresses(userID uint) ([]model.Address, error)
	GetAddress(userID, addressID uint) (*model.Address, error)
	CreateAddress(userID uint, input AddressInput) (*model.Address, error)
	UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error)
	SetDefaultAddress(userID, addressID uint) error
	DeleteAddress(userID, addressID uint) error
}

type addressService struct {
	db          *gorm.DB
	addressRepo repository.AddressRepository
}

func NewAddressService(db *gorm.DB, addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		db:          db,
		addressRepo: addressRepo,
	}
}

func (s *addressService) ListAddresses(userID uint) ([]model.Address, error) {
	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return addresses, nil
}

// GetAddress treats addresses of other users as missing
func (s *addressService) GetAddress(userID, addressID uint) (*model.Address, error) {
	return s.findOwned(s.addressRepo, userID, addressID)
}

func (s *addressService) findOwned(repo repository.AddressRepository, userID, addressID uint) (*model.Address, error) {
	address, err := repo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Address access by non-owner", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// CreateAddress refuses a second default for the same user. A user's
// first address becomes the default regardless of the flag.
func (s *addressService) CreateAddress(userID uint, input AddressInput) (*model.Address, error) {
	address := &model.Address{UserID: userID}
	applyAddressInput(address, input)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		if err := repo.LockOwner(userID); err != nil {
			return err
		}

		existing, err := repo.FindByUserID(userID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if _, err := repo.FindDefaultByUserID(userID); err == nil {
				logger.Warn("Address create rejected: default already exists", map[string]interface{}{
					"user_id": userID,
				})
				return ErrDefaultAddressExists
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		return repo.Create(address)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Address created", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
		"is_default": address.IsDefault,
	})
	return address, nil
}

// UpdateAddress demotes the previous default and promotes this one in one transaction
func (s *addressService) UpdateAddress(userID, addressID uint, input AddressInput) (*model.Address, error) {
	var address *model.Address
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		if err := repo.LockOwner(userID); err != nil {
			return err
		}

		var err error
		address, err = s.findOwned(repo, userID, addressID)
		if err != nil {
			return err
		}

		applyAddressInput(address, input)
		if address.IsDefault {
			if err := repo.ClearDefault(userID, addressID); err != nil {
				return err
			}
		}
		return repo.Update(address)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Address updated", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
		"is_default": address.IsDefault,
	})
	return address, nil
}

func (s *addressService) SetDefaultAddress(userID, addressID uint) error {
	if _, err := s.GetAddress(userID, addressID); err != nil {
		return err
	}
	if err := s.addressRepo.SetDefault(userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	if _, err := s.GetAddress(userID, addressID); err != nil {
		return err
	}
	if err := s.addressRepo.Delete(addressID); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}
	return nil
}

func applyAddressInput(address *model.Address, input AddressInput) {
	address.Receiver = input.Receiver
	address.Contact = input.Contact
	address.ProvinceCode = input.ProvinceCode
	address.CityCode = input.CityCode
	address.CountyCode = input.CountyCode
	address.Address = input.Address
	address.FullLocation = input.FullLocation
	address.IsDefault = input.IsDefault
}
