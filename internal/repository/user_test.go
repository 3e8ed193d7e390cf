package repository

import (
	"context"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_CreateAndLookups(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byUsername, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_GetByIdentifier(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createTestUser(t, db, "alice")

	byName, err := repo.GetByIdentifier(ctx, "alice")
	require.NoError(t, err)
	byEmail, err := repo.GetByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byEmail.ID)
}

func TestUserRepository_DuplicateUsernameRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createTestUser(t, db, "alice")

	dup := &models.User{
		Username: "alice",
		Email:    "other@example.com",
		Password: "hashed",
		IsActive: true,
	}
	assert.Error(t, repo.Create(ctx, dup))
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	require.Nil(t, user.LastLogin)

	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, time.Now(), *got.LastLogin, 5*time.Second)
}

func TestUserRepository_GetActiveByUsernames(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createTestUser(t, db, "alice")
	ghost := createTestUser(t, db, "ghost")
	require.NoError(t, db.Model(ghost).Update("is_active", false).Error)

	users, err := repo.GetActiveByUsernames(ctx, []string{"alice", "ghost", "missing"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	users, err = repo.GetActiveByUsernames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	require.NoError(t, db.Model(alice).Update("display_name", "Alice Wonderland").Error)
	createTestUser(t, db, "bob")
	ghost := createTestUser(t, db, "alicia")
	require.NoError(t, db.Model(ghost).Update("is_active", false).Error)

	users, total, err := repo.Search(ctx, "ALI", pageReq(1, 20))
	require.NoError(t, err)
	// Case-insensitive, inactive accounts hidden.
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	users, total, err = repo.Search(ctx, "", pageReq(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)
}
