package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/internal/db"
	pkgredis "github.com/ikkim/minishop-backend/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-controllers"

type stubIdentity struct{}

func (stubIdentity) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "bad" {
		return "", errors.New("errcode=40029")
	}
	return "open-" + code, nil
}

type memorySessions struct {
	mu     sync.Mutex
	tokens map[uint]string
}

func (m *memorySessions) Set(ctx context.Context, userID uint, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *memorySessions) Get(ctx context.Context, userID uint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[userID]
	if !ok {
		return "", pkgredis.ErrSessionNotFound
	}
	return token, nil
}

func (m *memorySessions) Delete(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

type memoryBlobs struct{}

func (memoryBlobs) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	return "https://cdn.test/" + key, nil
}

// controllerTestEnv wires real services over an in-memory database
type controllerTestEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	user     *model.User
	sessions *memorySessions

	auth    *AuthController
	users   *UserController
	goods   *GoodsController
	cart    *CartController
	address *AddressController
	orders  *OrderController
}

func setupControllerTest(t *testing.T) *controllerTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	goodsRepo := repository.NewGoodsRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	sessions := &memorySessions{tokens: map[uint]string{}}

	authService := service.NewAuthService(userRepo, stubIdentity{}, sessions, service.AuthConfig{
		JWTSecret:     testJWTSecret,
		TokenExpiry:   time.Hour,
		AccountPrefix: "user",
	})
	orderService := service.NewOrderService(
		testDB,
		repository.NewOrderRepository(testDB),
		repository.NewOrderCancelJobRepository(testDB),
		goodsRepo,
		cartRepo,
		addressRepo,
		nil,
		service.OrderConfig{PayTimeout: 30 * time.Minute},
	)

	user := &model.User{OpenID: "open-fixture", Account: "user0001", Nickname: "fixture"}
	require.NoError(t, testDB.Create(user).Error)

	gin.SetMode(gin.TestMode)
	return &controllerTestEnv{
		db:       testDB,
		router:   gin.New(),
		user:     user,
		sessions: sessions,
		auth:     NewAuthController(authService),
		users:    NewUserController(service.NewUserService(userRepo, memoryBlobs{}, "avatar")),
		goods:    NewGoodsController(service.NewGoodsService(repository.NewCategoryRepository(testDB), goodsRepo)),
		cart:     NewCartController(service.NewCartService(cartRepo, goodsRepo)),
		address:  NewAddressController(service.NewAddressService(testDB, addressRepo)),
		orders:   NewOrderController(orderService),
	}
}

// asUser registers a route that runs handler as the fixture user
func (e *controllerTestEnv) asUser(method, path string, handler gin.HandlerFunc) {
	e.router.Handle(method, path, func(c *gin.Context) {
		c.Set("user_id", e.user.ID)
		handler(c)
	})
}

func (e *controllerTestEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *controllerTestEnv) createGoods(t *testing.T, name, price, freight string, inventory int) *model.Goods {
	t.Helper()
	category := &model.Category{Name: name + "-category"}
	require.NoError(t, e.db.Create(category).Error)
	goods := &model.Goods{
		CategoryID: category.ID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		OldPrice:   decimal.RequireFromString(price),
		Freight:    decimal.RequireFromString(freight),
		Inventory:  inventory,
	}
	require.NoError(t, e.db.Create(goods).Error)
	return goods
}

func (e *controllerTestEnv) createAddress(t *testing.T) *model.Address {
	t.Helper()
	address := &model.Address{UserID: e.user.ID, Receiver: "Han Meimei", Contact: "13900000000", Address: "3 Lake St", IsDefault: true}
	require.NoError(t, e.db.Create(address).Error)
	return address
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
