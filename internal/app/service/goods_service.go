package service

import (
	"errors"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

var (
	ErrGoodsNotFound    = errors.New("goods not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type GoodsListInput struct {
	CategoryID uint
	Recommend  bool
	Keyword    string
	Page       int
	PageSize   int
}

type GoodsPage struct {
	Items    []model.Goods `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type GoodsService interface {
	ListCategories() ([]model.Category, error)
	GetGoodsDetail(id uint) (*model.Goods, error)
	ListGoods(input GoodsListInput) (*GoodsPage, error)
}

type goodsService struct {
	categoryRepo repository.CategoryRepository
	goodsRepo    repository.GoodsRepository
}

func NewGoodsService(categoryRepo repository.CategoryRepository, goodsRepo repository.GoodsRepository) GoodsService {
	return &goodsService{
		categoryRepo: categoryRepo,
		goodsRepo:    goodsRepo,
	}
}

func (s *goodsService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *goodsService) GetGoodsDetail(id uint) (*model.Goods, error) {
	goods, err := s.goodsRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoodsNotFound
		}
		return nil, err
	}
	return goods, nil
}

// ListGoods pages goods ordered by sales, optionally by category or recommended only
func (s *goodsService) ListGoods(input GoodsListInput) (*GoodsPage, error) {
	page, size := normalizePage(input.Page, input.PageSize)

	if input.CategoryID != 0 {
		if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	items, total, err := s.goodsRepo.FindPage(repository.GoodsFilter{
		CategoryID: input.CategoryID,
		Recommend:  input.Recommend,
		Keyword:    input.Keyword,
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		return nil, err
	}

	return &GoodsPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
