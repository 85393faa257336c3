package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	GoodsID   uint   `json:"goods_id" binding:"required"`
	Count     int    `json:"count" binding:"required,gt=0"`
	AttrsText string `json:"attrs_text" binding:"max=255"`
}

type UpdateCartRequest struct {
	Count    *int  `json:"count" binding:"omitempty,gt=0"`
	Selected *bool `json:"selected"`
}

type SelectAllRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

type RemoveCartRequest struct {
	IDs []uint `json:"ids"`
}

// GetCart returns the cart with the selected subtotal
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		respondServiceError(c, err, "get cart")
		return
	}

	selectedTotal := decimal.Zero
	selectedCount := 0
	for _, item := range items {
		if !item.Selected {
			continue
		}
		selectedTotal = selectedTotal.Add(item.Goods.Price.Mul(decimal.NewFromInt(int64(item.Count))))
		selectedCount += item.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_items":     items,
		"count":          len(items),
		"selected_count": selectedCount,
		"selected_total": selectedTotal.StringFixed(2),
	})
}

// AddToCart adds goods, merging with an existing line of the same attrs
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "add to cart")
		return
	}

	item, err := ctrl.cartService.AddToCart(userID, req.GoodsID, req.Count, req.AttrsText)
	if err != nil {
		respondServiceError(c, err, "add to cart")
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"user_id":  userID,
		"goods_id": req.GoodsID,
		"count":    item.Count,
	})

	c.JSON(http.StatusCreated, gin.H{
		"cart_item": item,
	})
}

// UpdateCartItem changes count and/or selection
// PUT /api/v1/cart/:id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "update cart item")
		return
	}

	item, err := ctrl.cartService.UpdateCartItem(userID, id, service.UpdateCartItemInput{
		Count:    req.Count,
		Selected: req.Selected,
	})
	if err != nil {
		respondServiceError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_item": item,
	})
}

// SelectAll toggles selection of every cart line
// PUT /api/v1/cart/selected
func (ctrl *CartController) SelectAll(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "select cart items")
		return
	}

	if err := ctrl.cartService.SelectAll(userID, *req.Selected); err != nil {
		respondServiceError(c, err, "select cart items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selected": *req.Selected,
	})
}

// RemoveItems deletes the given lines, or the whole cart when ids is empty
// DELETE /api/v1/cart
func (ctrl *CartController) RemoveItems(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req RemoveCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err, "remove cart items")
			return
		}
	}

	var err error
	if len(req.IDs) == 0 {
		err = ctrl.cartService.ClearCart(userID)
	} else {
		err = ctrl.cartService.RemoveItems(userID, req.IDs)
	}
	if err != nil {
		respondServiceError(c, err, "remove cart items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated successfully",
	})
}
