package repository

import (
	"testing"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, openID string) *model.User {
	t.Helper()
	user := &model.User{OpenID: openID, Account: "user-" + openID, Nickname: "user-" + openID}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestGoods(t *testing.T, testDB *gorm.DB, name, price, freight string, inventory int) *model.Goods {
	t.Helper()
	category := &model.Category{Name: "category-" + name}
	require.NoError(t, testDB.Create(category).Error)

	goods := &model.Goods{
		CategoryID: category.ID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		OldPrice:   decimal.RequireFromString(price),
		Freight:    decimal.RequireFromString(freight),
		Inventory:  inventory,
	}
	require.NoError(t, testDB.Create(goods).Error)
	return goods
}
