package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/database"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
	pkgauth "github.com/roy-raphael/DW-P6-Piiquante/pkg/auth"
)

// setupTestDB starts a throwaway PostgreSQL container, applies the embedded
// migrations and returns a ready database handle.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("piiquante"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))

	db := &database.DB{Pool: pool}
	require.NoError(t, db.Migrate(ctx))

	return db
}

func createTestUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()

	hash, err := pkgauth.HashPassword("hunter2")
	require.NoError(t, err)

	user, err := repo.Create(context.Background(), &models.User{Email: email, PasswordHash: hash})
	require.NoError(t, err)
	return user
}

func testSauceInput(userID string) *models.Sauce {
	return &models.Sauce{
		UserID:        userID,
		Name:          "Blazing Habanero",
		Manufacturer:  "Hot Labs",
		Description:   "Bring a fire extinguisher",
		MainPepper:    "Habanero",
		ImageURL:      "http://api.test/images/abc.jpg",
		Heat:          8,
		UsersLiked:    []string{},
		UsersDisliked: []string{},
	}
}

func TestUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")
	require.NotEmpty(t, user.ID)

	t.Run("get by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.NoError(t, pkgauth.ComparePassword(found.PasswordHash, "hunter2"))
	})

	t.Run("get by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", found.Email)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, &models.User{Email: "alice@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestSauceRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewSauceRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "owner@example.com")

	created, err := repo.Create(ctx, testSauceInput(owner.ID))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	t.Run("get by id round trip", func(t *testing.T) {
		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Blazing Habanero", found.Name)
		assert.Equal(t, 8, found.Heat)
		assert.Equal(t, owner.ID, found.UserID)
		assert.Empty(t, found.UsersLiked)
		assert.Empty(t, found.UsersDisliked)
	})

	t.Run("list", func(t *testing.T) {
		sauces, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, sauces, 1)
	})

	t.Run("update", func(t *testing.T) {
		created.Name = "Mild Habanero"
		created.Heat = 2
		require.NoError(t, repo.Update(ctx, created))

		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mild Habanero", found.Name)
		assert.Equal(t, 2, found.Heat)
	})

	t.Run("votes", func(t *testing.T) {
		voter := createTestUser(t, users, "voter@example.com")

		updated, err := repo.ApplyVote(ctx, created.ID, voter.ID, models.VoteLike)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Likes)
		assert.Contains(t, updated.UsersLiked, voter.ID)

		// switching sides moves the user between arrays
		updated, err = repo.ApplyVote(ctx, created.ID, voter.ID, models.VoteDislike)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Likes)
		assert.Equal(t, 1, updated.Dislikes)

		updated, err = repo.ApplyVote(ctx, created.ID, voter.ID, models.VoteNeutral)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Likes)
		assert.Equal(t, 0, updated.Dislikes)
	})

	t.Run("vote on unknown sauce", func(t *testing.T) {
		_, err := repo.ApplyVote(ctx, "00000000-0000-0000-0000-000000000000", owner.ID, models.VoteLike)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, created.ID))

		_, err := repo.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
