package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRoutes(env *controllerTestEnv) {
	env.asUser(http.MethodGet, "/cart", env.cart.GetCart)
	env.asUser(http.MethodPost, "/cart", env.cart.AddToCart)
	env.asUser(http.MethodPut, "/cart/selected", env.cart.SelectAll)
	env.asUser(http.MethodPut, "/cart/:id", env.cart.UpdateCartItem)
	env.asUser(http.MethodDelete, "/cart", env.cart.RemoveItems)
}

func TestCartController_AddAndGet(t *testing.T) {
	env := setupControllerTest(t)
	setupCartRoutes(env)
	mug := env.createGoods(t, "mug", "12.50", "0", 5)

	w := env.do(t, http.MethodPost, "/cart", map[string]interface{}{"goods_id": mug.ID, "count": 2})
	requireStatus(t, w, http.StatusCreated)

	w = env.do(t, http.MethodGet, "/cart", nil)
	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "25.00", body["selected_total"])

	w = env.do(t, http.MethodPost, "/cart", map[string]interface{}{"goods_id": mug.ID, "count": 9})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), errors.GoodsInsufficientStock)

	w = env.do(t, http.MethodPost, "/cart", map[string]interface{}{"goods_id": mug.ID, "count": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_UpdateSelectRemove(t *testing.T) {
	env := setupControllerTest(t)
	setupCartRoutes(env)
	mug := env.createGoods(t, "mug", "12.50", "0", 5)

	item := &model.CartItem{UserID: env.user.ID, GoodsID: mug.ID, Count: 1, Selected: true}
	require.NoError(t, env.db.Create(item).Error)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/cart/%d", item.ID), map[string]interface{}{"count": 3, "selected": false})
	requireStatus(t, w, http.StatusOK)

	var stored model.CartItem
	require.NoError(t, env.db.First(&stored, item.ID).Error)
	assert.Equal(t, 3, stored.Count)
	assert.False(t, stored.Selected)

	w = env.do(t, http.MethodPut, "/cart/selected", map[string]interface{}{"selected": true})
	requireStatus(t, w, http.StatusOK)
	require.NoError(t, env.db.First(&stored, item.ID).Error)
	assert.True(t, stored.Selected)

	w = env.do(t, http.MethodPut, "/cart/9999", map[string]interface{}{"count": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/cart", map[string]interface{}{"ids": []uint{item.ID}})
	requireStatus(t, w, http.StatusOK)

	var n int64
	require.NoError(t, env.db.Model(&model.CartItem{}).Where("user_id = ?", env.user.ID).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}
