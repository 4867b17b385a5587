package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/identity"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := t.Context()

	user := createTestUser(t, db, "asha@example.com")

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha Farmer", found.Name)
		assert.Equal(t, identity.RoleUser, found.Role)
		assert.True(t, found.VerifyPassword("secret123"))
	})

	t.Run("finds by email case insensitively", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "  ASHA@example.com ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("reports existence", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "asha@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup, err := identity.NewUser("Other", "asha@example.com", "secret123")
		require.NoError(t, err)

		err = repo.Create(ctx, dup)
		assert.True(t, shared.IsCode(err, shared.CodeConflict))
	})
}

func TestGormUserRepository_ResetToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := t.Context()
	now := time.Now()

	user := createTestUser(t, db, "ravi@example.com")
	raw, err := user.IssueResetToken(now, time.Hour)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByResetTokenHash(ctx, identity.HashResetToken(raw))
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.True(t, found.HasValidResetToken(raw, now))

	require.NoError(t, found.ResetPassword(raw, "newsecret", now))
	require.NoError(t, repo.Update(ctx, found))

	_, err = repo.FindByResetTokenHash(ctx, identity.HashResetToken(raw))
	assert.ErrorIs(t, err, shared.ErrNotFound, "token is single use")

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.VerifyPassword("newsecret"))
	assert.Empty(t, reloaded.ResetTokenHash)
	assert.Nil(t, reloaded.ResetTokenExpiresAt)
	assert.NotNil(t, reloaded.PasswordChangedAt)
}

func TestGormUserRepository_UpdateMissing(t *testing.T) {
	db := setupTestDB(t)
	user, err := identity.NewUser("Ghost", "ghost@example.com", "secret123")
	require.NoError(t, err)

	err = NewGormUserRepository(db).Update(t.Context(), user)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
