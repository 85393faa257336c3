package repository

import (
	"testing"

	"github.com/ikkim/minishop-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countDefaults(t *testing.T, testDB *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(&model.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&n).Error)
	return n
}

func TestAddressRepository_SetDefault(t *testing.T) {
	testDB := setupRepoTestDB(t)
	repo := NewAddressRepository(testDB)
	user := createTestUser(t, testDB, "addr-1")

	first := &model.Address{UserID: user.ID, Receiver: "A", Contact: "1", Address: "road 1", IsDefault: true}
	second := &model.Address{UserID: user.ID, Receiver: "B", Contact: "2", Address: "road 2"}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	require.NoError(t, repo.SetDefault(user.ID, second.ID))

	assert.Equal(t, int64(1), countDefaults(t, testDB, user.ID))
	def, err := repo.FindDefaultByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
}

func TestAddressRepository_SetDefault_OtherUsersAddress(t *testing.T) {
	testDB := setupRepoTestDB(t)
	repo := NewAddressRepository(testDB)
	owner := createTestUser(t, testDB, "addr-owner")
	intruder := createTestUser(t, testDB, "addr-intruder")

	addr := &model.Address{UserID: owner.ID, Receiver: "A", Contact: "1", Address: "road", IsDefault: true}
	require.NoError(t, repo.Create(addr))

	err := repo.SetDefault(intruder.ID, addr.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, int64(1), countDefaults(t, testDB, owner.ID))
}

func TestAddressRepository_ClearDefault(t *testing.T) {
	testDB := setupRepoTestDB(t)
	repo := NewAddressRepository(testDB)
	u1 := createTestUser(t, testDB, "addr-u1")
	u2 := createTestUser(t, testDB, "addr-u2")

	a1 := &model.Address{UserID: u1.ID, Receiver: "A", Contact: "1", Address: "x", IsDefault: true}
	a2 := &model.Address{UserID: u2.ID, Receiver: "B", Contact: "2", Address: "y", IsDefault: true}
	require.NoError(t, repo.Create(a1))
	require.NoError(t, repo.Create(a2))

	require.NoError(t, repo.ClearDefault(u1.ID, 0))

	assert.Equal(t, int64(0), countDefaults(t, testDB, u1.ID))
	assert.Equal(t, int64(1), countDefaults(t, testDB, u2.ID))
}

func TestAddressRepository_ListOrdersDefaultFirst(t *testing.T) {
	testDB := setupRepoTestDB(t)
	repo := NewAddressRepository(testDB)
	user := createTestUser(t, testDB, "addr-list")

	require.NoError(t, repo.Create(&model.Address{UserID: user.ID, Receiver: "A", Contact: "1", Address: "x"}))
	def := &model.Address{UserID: user.ID, Receiver: "B", Contact: "2", Address: "y", IsDefault: true}
	require.NoError(t, repo.Create(def))
	require.NoError(t, repo.Create(&model.Address{UserID: user.ID, Receiver: "C", Contact: "3", Address: "z"}))

	list, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, def.ID, list[0].ID)

	require.NoError(t, repo.Delete(def.ID))
	_, err = repo.FindByID(def.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAddressRepository_OneLiveDefaultPerUser(t *testing.T) {
	testDB := setupRepoTestDB(t)
	repo := NewAddressRepository(testDB)
	user := createTestUser(t, testDB, "addr-unique")
	other := createTestUser(t, testDB, "addr-unique-other")

	first := &model.Address{UserID: user.ID, Receiver: "A", Contact: "1", Address: "x", IsDefault: true}
	require.NoError(t, repo.Create(first))

	err := repo.Create(&model.Address{UserID: user.ID, Receiver: "B", Contact: "2", Address: "y", IsDefault: true})
	assert.Error(t, err, "a second default for the same user is refused by the database")
	assert.Equal(t, int64(1), countDefaults(t, testDB, user.ID))

	require.NoError(t, repo.Create(&model.Address{UserID: other.ID, Receiver: "C", Contact: "3", Address: "z", IsDefault: true}))
	require.NoError(t, repo.Create(&model.Address{UserID: user.ID, Receiver: "D", Contact: "4", Address: "w"}))

	// a deleted default no longer counts
	require.NoError(t, repo.Delete(first.ID))
	assert.NoError(t, repo.Create(&model.Address{UserID: user.ID, Receiver: "E", Contact: "5", Address: "v", IsDefault: true}))
}

func TestAddressRepository_LockOwner(t *testing.T) {
	testDB := setupRepoTestDB(t)
	repo := NewAddressRepository(testDB)
	user := createTestUser(t, testDB, "addr-lock")

	err := testDB.Transaction(func(tx *gorm.DB) error {
		return repo.WithTx(tx).LockOwner(user.ID)
	})
	assert.NoError(t, err)

	err = testDB.Transaction(func(tx *gorm.DB) error {
		return repo.WithTx(tx).LockOwner(user.ID + 100)
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
