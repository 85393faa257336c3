package repository

import (
	"testing"
	"time"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.User, *model.Goods) {
	testDB := setupRepoTestDB(t)
	user := createTestUser(t, testDB, "order-user")
	goods := createTestGoods(t, testDB, "kettle", "19.99", "5.00", 10)
	return testDB, NewOrderRepository(testDB), user, goods
}

func newTestOrder(userID uint, number string) *model.Order {
	return &model.Order{
		UserID:      userID,
		AddressID:   1,
		OrderNumber: number,
		Status:      model.OrderStatusAwaitingPayment,
	}
}

func TestOrderRepository_CreateWithItemsAndTotals(t *testing.T) {
	_, repo, user, goods := setupOrderTest(t)

	order := newTestOrder(user.ID, "n-1")
	require.NoError(t, repo.Create(order))
	require.NotZero(t, order.ID)

	items := []model.OrderItem{
		{OrderID: order.ID, GoodsID: goods.ID, Name: goods.Name, Price: goods.Price, Freight: goods.Freight, Count: 2},
	}
	require.NoError(t, repo.CreateItems(items))
	require.NoError(t, repo.UpdateTotals(order.ID, decimal.RequireFromString("44.98"), decimal.RequireFromString("5.00"), 2))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, found.OrderItems, 1)
	assert.True(t, found.TotalPrice.Equal(decimal.RequireFromString("44.98")), found.TotalPrice.String())
	assert.True(t, found.TotalFreight.Equal(decimal.RequireFromString("5")))
	assert.Equal(t, 2, found.TotalCount)
	assert.True(t, found.OrderItems[0].LineTotal().Equal(decimal.RequireFromString("44.98")))
}

func TestOrderRepository_DuplicateOrderNumber(t *testing.T) {
	_, repo, user, _ := setupOrderTest(t)

	require.NoError(t, repo.Create(newTestOrder(user.ID, "same")))
	assert.Error(t, repo.Create(newTestOrder(user.ID, "same")))
}

func TestOrderRepository_TransitionStatus(t *testing.T) {
	_, repo, user, _ := setupOrderTest(t)
	order := newTestOrder(user.ID, "n-2")
	require.NoError(t, repo.Create(order))

	now := time.Now()
	changed, err := repo.TransitionStatus(order.ID, model.OrderStatusAwaitingPayment, model.OrderStatusPaid,
		map[string]interface{}{"pay_time": now})
	require.NoError(t, err)
	assert.True(t, changed)

	// a late cancel must not overwrite the payment
	changed, err = repo.TransitionStatus(order.ID, model.OrderStatusAwaitingPayment, model.OrderStatusCancelled, nil)
	require.NoError(t, err)
	assert.False(t, changed)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, found.Status)
	require.NotNil(t, found.PayTime)
}

func TestOrderRepository_FindByUserID(t *testing.T) {
	_, repo, user, _ := setupOrderTest(t)

	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(newTestOrder(user.ID, n)))
	}
	orders, _, err := repo.FindByUserID(user.ID, OrderQuery{})
	require.NoError(t, err)
	_, err = repo.TransitionStatus(orders[0].ID, model.OrderStatusAwaitingPayment, model.OrderStatusCancelled, nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		query     OrderQuery
		wantLen   int
		wantTotal int64
	}{
		{"all", OrderQuery{}, 3, 3},
		{"paged", OrderQuery{Limit: 2}, 2, 3},
		{"second page", OrderQuery{Limit: 2, Offset: 2}, 1, 3},
		{"awaiting", OrderQuery{Status: model.OrderStatusAwaitingPayment}, 2, 2},
		{"cancelled", OrderQuery{Status: model.OrderStatusCancelled}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, total, err := repo.FindByUserID(user.ID, tt.query)
			require.NoError(t, err)
			assert.Len(t, orders, tt.wantLen)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}
