package repositories_test

import (
	"fmt"
	"sync"
	"testing"

	"sns/internal/models"
	"sns/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryUserRepository_CreateAndGet(t *testing.T) {
	repo := repositories.NewInMemoryUserRepository()

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "digest"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = repo.GetByUsername("bob")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestInMemoryUserRepository_Duplicates(t *testing.T) {
	repo := repositories.NewInMemoryUserRepository()
	require.NoError(t, repo.Create(&models.User{Username: "alice", Email: "alice@example.com"}))

	err := repo.Create(&models.User{Username: "alice", Email: "x@example.com"})
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)

	err = repo.Create(&models.User{Username: "alice2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestInMemoryUserRepository_ConcurrentDuplicateCreate(t *testing.T) {
	repo := repositories.NewInMemoryUserRepository()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(&models.User{Username: "alice", Email: fmt.Sprintf("a%d@example.com", i)})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, models.ErrDuplicateUsername)
	}
	assert.Equal(t, 1, created)
}
