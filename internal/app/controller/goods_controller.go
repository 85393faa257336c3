package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/service"
)

type GoodsController struct {
	goodsService service.GoodsService
}

func NewGoodsController(goodsService service.GoodsService) *GoodsController {
	return &GoodsController{
		goodsService: goodsService,
	}
}

// ListCategories returns every category by sort order
// GET /api/v1/categories
func (ctrl *GoodsController) ListCategories(c *gin.Context) {
	categories, err := ctrl.goodsService.ListCategories()
	if err != nil {
		respondServiceError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// ListGoods pages the catalog by category, recommendation or keyword
// GET /api/v1/goods?category_id=&recommend=&keyword=&page=&page_size=
func (ctrl *GoodsController) ListGoods(c *gin.Context) {
	input := service.GoodsListInput{
		Keyword:  c.Query("keyword"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 0),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err == nil {
			input.CategoryID = uint(id)
		}
	}
	if recommend, err := strconv.ParseBool(c.Query("recommend")); err == nil {
		input.Recommend = recommend
	}

	page, err := ctrl.goodsService.ListGoods(input)
	if err != nil {
		respondServiceError(c, err, "list goods")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetGoods returns one goods
// GET /api/v1/goods/:id
func (ctrl *GoodsController) GetGoods(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	goods, err := ctrl.goodsService.GetGoodsDetail(id)
	if err != nil {
		respondServiceError(c, err, "get goods")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goods": goods,
	})
}
