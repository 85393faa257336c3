package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidCartCount = errors.New("cart count must be positive")
)

type UpdateCartItemInput struct {
	Count    *int
	Selected *bool
}

type CartService interface {
	AddToCart(userID, goodsID uint, count int, attrsText string) (*model.CartItem, error)
	GetCart(userID uint) ([]model.CartItem, error)
	UpdateCartItem(userID, cartItemID uint, input UpdateCartItemInput) (*model.CartItem, error)
	SelectAll(userID uint, selected bool) error
	RemoveItems(userID uint, ids []uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo  repository.CartRepository
	goodsRepo repository.GoodsRepository
}

func NewCartService(cartRepo repository.CartRepository, goodsRepo repository.GoodsRepository) CartService {
	return &cartService{
		cartRepo:  cartRepo,
		goodsRepo: goodsRepo,
	}
}

// AddToCart merges into an existing row for the same goods and attributes
func (s *cartService) AddToCart(userID, goodsID uint, count int, attrsText string) (*model.CartItem, error) {
	if count <= 0 {
		return nil, ErrInvalidCartCount
	}

	logger.Info("Adding goods to cart", map[string]interface{}{
		"user_id":  userID,
		"goods_id": goodsID,
		"count":    count,
	})

	goods, err := s.goodsRepo.FindByID(goodsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoodsNotFound
		}
		return nil, err
	}

	existing, err := s.cartRepo.FindByUserGoodsAttrs(userID, goodsID, attrsText)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	total := count
	if existing != nil {
		total += existing.Count
	}
	if total > goods.Inventory {
		logger.Warn("Cart add rejected: insufficient inventory", map[string]interface{}{
			"user_id":   userID,
			"goods_id":  goodsID,
			"requested": total,
			"available": goods.Inventory,
		})
		return nil, fmt.Errorf("%w: %s", ErrInsufficientInventory, goods.Name)
	}

	if existing != nil {
		existing.Count = total
		existing.Selected = true
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		existing.Goods = *goods
		return existing, nil
	}

	item := &model.CartItem{
		UserID:    userID,
		GoodsID:   goodsID,
		Count:     count,
		AttrsText: attrsText,
		Selected:  true,
	}
	if err := s.cartRepo.Create(item); err != nil {
		return nil, err
	}
	item.Goods = *goods
	return item, nil
}

func (s *cartService) GetCart(userID uint) ([]model.CartItem, error) {
	return s.cartRepo.FindByUserID(userID)
}

func (s *cartService) UpdateCartItem(userID, cartItemID uint, input UpdateCartItemInput) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	// other users' rows look missing
	if item.UserID != userID {
		logger.Warn("Cart item access by non-owner", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
		})
		return nil, ErrCartItemNotFound
	}

	if input.Count != nil {
		if *input.Count <= 0 {
			return nil, ErrInvalidCartCount
		}
		if *input.Count > item.Goods.Inventory {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientInventory, item.Goods.Name)
		}
		item.Count = *input.Count
	}
	if input.Selected != nil {
		item.Selected = *input.Selected
	}

	if err := s.cartRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) SelectAll(userID uint, selected bool) error {
	return s.cartRepo.UpdateSelectedByUserID(userID, selected)
}

func (s *cartService) RemoveItems(userID uint, ids []uint) error {
	deleted, err := s.cartRepo.DeleteByIDs(userID, ids)
	if err != nil {
		return err
	}

	logger.Info("Cart items removed", map[string]interface{}{
		"user_id":   userID,
		"requested": len(ids),
		"deleted":   deleted,
	})
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	return s.cartRepo.DeleteByUserID(userID)
}
