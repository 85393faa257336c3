package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PreviewLine prices one goods line at current catalog prices.
// Price is the list price, PayPrice what the buyer pays per unit.
type PreviewLine struct {
	GoodsID       uint            `json:"id"`
	Name          string          `json:"name"`
	Picture       string          `json:"picture"`
	Count         int             `json:"count"`
	AttrsText     string          `json:"attrs_text"`
	Price         decimal.Decimal `json:"price"`
	PayPrice      decimal.Decimal `json:"pay_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalPayPrice decimal.Decimal `json:"total_pay_price"`
}

type PreviewSummary struct {
	GoodsCount    int             `json:"goods_count"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalPayPrice decimal.Decimal `json:"total_pay_price"`
	PostFee       decimal.Decimal `json:"post_fee"`
}

type PreviewAddress struct {
	model.Address
	Selected bool `json:"selected"`
}

type OrderPreview struct {
	UserAddresses []PreviewAddress `json:"user_addresses"`
	Goods         []PreviewLine    `json:"goods"`
	Summary       PreviewSummary   `json:"summary"`
}

func (s *orderService) GetPreOrder(userID uint) (*OrderPreview, error) {
	selected, err := s.cartRepo.FindSelectedByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ErrEmptyCartSelection
	}

	lines := make([]OrderLineInput, 0, len(selected))
	for _, item := range selected {
		lines = append(lines, OrderLineInput{GoodsID: item.GoodsID, Count: item.Count, AttrsText: item.AttrsText})
	}
	return s.buildPreview(userID, lines, 0)
}

// GetPreOrderNow previews a direct purchase of a single goods.
// addressID preselects an address; zero selects the default.
func (s *orderService) GetPreOrderNow(userID, goodsID uint, count int, attrsText string, addressID uint) (*OrderPreview, error) {
	if goodsID == 0 || count <= 0 {
		return nil, fmt.Errorf("%w: goods %d count %d", ErrInvalidOrderRequest, goodsID, count)
	}

	goods, err := s.goodsRepo.FindByID(goodsID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrGoodsNotFound, goodsID)
		}
		return nil, err
	}
	if count > goods.Inventory {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientInventory, goods.Name)
	}

	return s.buildPreview(userID, []OrderLineInput{{GoodsID: goodsID, Count: count, AttrsText: attrsText}}, addressID)
}

// GetRepurchasePreview repeats a past order's lines at today's prices
func (s *orderService) GetRepurchasePreview(userID, orderID uint) (*OrderPreview, error) {
	order, err := s.findOwnedOrder(s.orderRepo, userID, orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]OrderLineInput, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		lines = append(lines, OrderLineInput{GoodsID: item.GoodsID, Count: item.Count, AttrsText: item.AttrsText})
	}
	return s.buildPreview(userID, lines, order.AddressID)
}

func (s *orderService) buildPreview(userID uint, lines []OrderLineInput, addressID uint) (*OrderPreview, error) {
	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	preview := &OrderPreview{
		UserAddresses: markSelectedAddress(addresses, addressID),
		Goods:         make([]PreviewLine, 0, len(lines)),
	}

	ids := make([]uint, 0, len(lines))
	for _, in := range lines {
		ids = append(ids, in.GoodsID)
	}
	found, err := s.goodsRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Goods, len(found))
	for _, g := range found {
		byID[g.ID] = g
	}

	totalPrice := decimal.Zero
	totalPayPrice := decimal.Zero
	postFee := decimal.Zero
	for _, in := range lines {
		goods, ok := byID[in.GoodsID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrGoodsNotFound, in.GoodsID)
		}

		lineTotal := goods.Price.Mul(decimal.NewFromInt(int64(in.Count))).Add(goods.Freight)
		preview.Goods = append(preview.Goods, PreviewLine{
			GoodsID:       goods.ID,
			Name:          goods.Name,
			Picture:       goods.Cover,
			Count:         in.Count,
			AttrsText:     in.AttrsText,
			Price:         goods.OldPrice,
			PayPrice:      goods.Price,
			TotalPrice:    lineTotal,
			TotalPayPrice: lineTotal,
		})

		preview.Summary.GoodsCount += in.Count
		totalPrice = totalPrice.Add(lineTotal)
		totalPayPrice = totalPayPrice.Add(lineTotal)
		postFee = postFee.Add(goods.Freight)
	}

	preview.Summary.TotalPrice = totalPrice.Round(2)
	preview.Summary.TotalPayPrice = totalPayPrice.Round(2)
	preview.Summary.PostFee = postFee.Round(2)
	return preview, nil
}

// markSelectedAddress flags addressID, or the default when addressID is
// zero or not among the user's addresses.
func markSelectedAddress(addresses []model.Address, addressID uint) []PreviewAddress {
	found := false
	if addressID != 0 {
		for _, a := range addresses {
			if a.ID == addressID {
				found = true
				break
			}
		}
	}

	out := make([]PreviewAddress, 0, len(addresses))
	for _, a := range addresses {
		selected := a.IsDefault
		if found {
			selected = a.ID == addressID
		}
		out = append(out, PreviewAddress{Address: a, Selected: selected})
	}
	return out
}
