package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/service"
	apperrors "github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type OrderGoodsRequest struct {
	ID        uint   `json:"id" binding:"required"`
	Count     int    `json:"count" binding:"required,gt=0"`
	AttrsText string `json:"attrs_text" binding:"max=255"`
}

type SubmitOrderRequest struct {
	AddressID        uint                `json:"address_id" binding:"required"`
	DeliveryTimeType int                 `json:"delivery_time_type" binding:"omitempty,oneof=1 2 3"`
	PayType          int                 `json:"pay_type" binding:"omitempty,oneof=1 2"`
	PayChannel       int                 `json:"pay_channel"`
	BuyerMessage     string              `json:"buyer_message" binding:"max=500"`
	Goods            []OrderGoodsRequest `json:"goods" binding:"dive"`
	FromCart         bool                `json:"from_cart"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// PreOrder previews checkout of the selected cart items
// GET /api/v1/orders/pre
func (ctrl *OrderController) PreOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	preview, err := ctrl.orderService.GetPreOrder(userID)
	if err != nil {
		respondServiceError(c, err, "preview order")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// PreOrderNow previews buying one goods directly
// GET /api/v1/orders/pre/now?goods_id=&count=&attrs_text=&address_id=
func (ctrl *OrderController) PreOrderNow(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	goodsID, err := strconv.ParseUint(c.Query("goods_id"), 10, 32)
	if err != nil || goodsID == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid goods_id")
		return
	}
	count := queryInt(c, "count", 1)
	addressID := queryInt(c, "address_id", 0)
	if addressID < 0 {
		addressID = 0
	}

	preview, err := ctrl.orderService.GetPreOrderNow(userID, uint(goodsID), count, c.Query("attrs_text"), uint(addressID))
	if err != nil {
		respondServiceError(c, err, "preview order")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// RepurchasePreview previews reordering a past order
// GET /api/v1/orders/pre/repurchase/:id
func (ctrl *OrderController) RepurchasePreview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	preview, err := ctrl.orderService.GetRepurchasePreview(userID, id)
	if err != nil {
		respondServiceError(c, err, "preview repurchase")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// SubmitOrder places an order
// POST /api/v1/orders
func (ctrl *OrderController) SubmitOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "submit order")
		return
	}
	if !req.FromCart && len(req.Goods) == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "goods is required")
		return
	}

	input := service.SubmitOrderInput{
		UserID:           userID,
		AddressID:        req.AddressID,
		DeliveryTimeType: model.DeliveryTimeType(req.DeliveryTimeType),
		PayType:          model.PayType(req.PayType),
		PayChannel:       req.PayChannel,
		BuyerMessage:     req.BuyerMessage,
		FromCart:         req.FromCart,
	}
	for _, g := range req.Goods {
		input.Goods = append(input.Goods, service.OrderLineInput{
			GoodsID:   g.ID,
			Count:     g.Count,
			AttrsText: g.AttrsText,
		})
	}

	order, err := ctrl.orderService.SubmitOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "submit order")
		return
	}

	log.Info("Order created", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":           order.ID,
		"order_number": order.OrderNumber,
		"total_price":  order.TotalPrice,
	})
}

// ListOrders GET /api/v1/orders?status=&page=&page_size=
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	status := model.OrderStatus(c.Query("status"))
	switch status {
	case "", model.OrderStatusAwaitingPayment, model.OrderStatusPaid, model.OrderStatusCancelled:
	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "unknown order status")
		return
	}

	page, err := ctrl.orderService.ListOrders(userID, status, queryInt(c, "page", 1), queryInt(c, "page_size", 0))
	if err != nil {
		respondServiceError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, page)
}

// ExportOrders downloads the user's orders as xlsx
// GET /api/v1/orders/export
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	data, err := ctrl.orderService.ExportOrders(userID)
	if err != nil {
		respondServiceError(c, err, "export orders")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetOrderDetail GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderDetail(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.orderService.GetOrderDetail(userID, id)
	if err != nil {
		respondServiceError(c, err, "get order detail")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CancelOrder POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err, "cancel order")
			return
		}
	}

	order, err := ctrl.orderService.CancelOrder(userID, id, req.Reason)
	if err != nil {
		respondServiceError(c, err, "cancel order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// PayOrder confirms payment of an order awaiting payment
// POST /api/v1/orders/:id/pay
func (ctrl *OrderController) PayOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.PayOrder(userID, id)
	if err != nil {
		respondServiceError(c, err, "pay order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}
