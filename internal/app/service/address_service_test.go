package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAddressServiceTest(t *testing.T) (AddressService, *gorm.DB, *model.User) {
	testDB := setupServiceTestDB(t)
	user := &model.User{OpenID: "o-addr", Account: "addr"}
	require.NoError(t, testDB.Create(user).Error)
	return NewAddressService(testDB, repository.NewAddressRepository(testDB)), testDB, user
}

func addressInput(receiver string, isDefault bool) AddressInput {
	return AddressInput{
		Receiver:     receiver,
		Contact:      "13800000000",
		ProvinceCode: "110000",
		CityCode:     "110100",
		CountyCode:   "110101",
		Address:      "1 Main St",
		FullLocation: "Beijing Dongcheng",
		IsDefault:    isDefault,
	}
}

func defaultCount(t *testing.T, testDB *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(&model.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).Count(&n).Error)
	return n
}

func TestAddressService_CreateAddress_FirstBecomesDefault(t *testing.T) {
	svc, _, user := setupAddressServiceTest(t)

	first, err := svc.CreateAddress(user.ID, addressInput("A", false))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.CreateAddress(user.ID, addressInput("B", false))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestAddressService_CreateAddress_RejectsSecondDefault(t *testing.T) {
	svc, testDB, user := setupAddressServiceTest(t)

	_, err := svc.CreateAddress(user.ID, addressInput("A", true))
	require.NoError(t, err)

	_, err = svc.CreateAddress(user.ID, addressInput("B", true))
	assert.ErrorIs(t, err, ErrDefaultAddressExists)
	assert.Equal(t, int64(1), defaultCount(t, testDB, user.ID))

	// another user's default does not block this user
	other := &model.User{OpenID: "o-addr-2", Account: "addr2"}
	require.NoError(t, testDB.Create(other).Error)
	_, err = svc.CreateAddress(other.ID, addressInput("C", true))
	assert.NoError(t, err)
}

func TestAddressService_UpdateAddress_SwapsDefault(t *testing.T) {
	svc, testDB, user := setupAddressServiceTest(t)

	first, err := svc.CreateAddress(user.ID, addressInput("A", true))
	require.NoError(t, err)
	second, err := svc.CreateAddress(user.ID, addressInput("B", false))
	require.NoError(t, err)

	updated, err := svc.UpdateAddress(user.ID, second.ID, addressInput("B2", true))
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, "B2", updated.Receiver)

	assert.Equal(t, int64(1), defaultCount(t, testDB, user.ID))
	reloaded, err := svc.GetAddress(user.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)
}

func TestAddressService_OwnershipAndDelete(t *testing.T) {
	svc, testDB, user := setupAddressServiceTest(t)
	stranger := &model.User{OpenID: "o-stranger-addr", Account: "s"}
	require.NoError(t, testDB.Create(stranger).Error)

	addr, err := svc.CreateAddress(user.ID, addressInput("A", false))
	require.NoError(t, err)

	_, err = svc.GetAddress(stranger.ID, addr.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	_, err = svc.UpdateAddress(stranger.ID, addr.ID, addressInput("X", true))
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.ErrorIs(t, svc.DeleteAddress(stranger.ID, addr.ID), ErrAddressNotFound)

	require.NoError(t, svc.DeleteAddress(user.ID, addr.ID))
	list, err := svc.ListAddresses(user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddressService_SetDefaultAddress(t *testing.T) {
	svc, testDB, user := setupAddressServiceTest(t)

	_, err := svc.CreateAddress(user.ID, addressInput("A", false))
	require.NoError(t, err)
	second, err := svc.CreateAddress(user.ID, addressInput("B", false))
	require.NoError(t, err)

	require.NoError(t, svc.SetDefaultAddress(user.ID, second.ID))
	assert.Equal(t, int64(1), defaultCount(t, testDB, user.ID))

	assert.ErrorIs(t, svc.SetDefaultAddress(user.ID, 9999), ErrAddressNotFound)
}

func TestAddressService_ConcurrentDefaultsStayUnique(t *testing.T) {
	svc, testDB, user := setupAddressServiceTest(t)

	const writers = 6
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateAddress(user.ID, addressInput(fmt.Sprintf("R%d", i), true))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrDefaultAddressExists)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, int64(1), defaultCount(t, testDB, user.ID))

	extra := make([]uint, 0, writers)
	for i := 0; i < writers; i++ {
		addr, err := svc.CreateAddress(user.ID, addressInput(fmt.Sprintf("N%d", i), false))
		require.NoError(t, err)
		extra = append(extra, addr.ID)
	}

	for _, id := range extra {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			assert.NoError(t, svc.SetDefaultAddress(user.ID, id))
		}(id)
	}
	wg.Wait()
	assert.Equal(t, int64(1), defaultCount(t, testDB, user.ID))
}
