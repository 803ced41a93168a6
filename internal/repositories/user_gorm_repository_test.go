package repositories_test

import (
	"testing"

	"sns/internal/database"
	"sns/internal/models"
	"sns/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGORMRepo(t *testing.T) *repositories.GORMUserRepository {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return repositories.NewGORMUserRepository(db)
}

func TestGORMUserRepository_CreateAndGet(t *testing.T) {
	repo := newGORMRepo(t)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "digest", Nickname: "Al"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)

	byName, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "Al", byName.Nickname)
	assert.Empty(t, byName.Bio)

	byEmail, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestGORMUserRepository_NotFound(t *testing.T) {
	repo := newGORMRepo(t)

	_, err := repo.GetByUsername("bob")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = repo.GetByEmail("bob@example.com")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = repo.GetByID(uuid.NewString())
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestGORMUserRepository_Exists(t *testing.T) {
	repo := newGORMRepo(t)
	require.NoError(t, repo.Create(&models.User{Username: "alice", Email: "alice@example.com", Password: "digest"}))

	taken, err := repo.ExistsByUsername("alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByUsername("bob")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.ExistsByEmail("alice@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

// A second insert that skipped the service pre-check must still be rejected
// by the unique indexes and reported as the right duplicate kind.
func TestGORMUserRepository_UniqueConstraintMapping(t *testing.T) {
	repo := newGORMRepo(t)
	require.NoError(t, repo.Create(&models.User{Username: "alice", Email: "alice@example.com", Password: "digest"}))

	err := repo.Create(&models.User{Username: "alice", Email: "other@example.com", Password: "digest"})
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)

	err = repo.Create(&models.User{Username: "alice2", Email: "alice@example.com", Password: "digest"})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}
