package otp

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testLedger exercises the behaviour every Repository must share.
func testLedger(t *testing.T, repo Repository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	record := func(email, code string) Record {
		return Record{Email: email, CodeHash: HashCode(code), CreatedAt: now, ExpiresAt: now.Add(DefaultTTL)}
	}

	t.Run("find after replace", func(t *testing.T) {
		require.NoError(t, repo.Replace(ctx, record("ledger-a@x.com", "111111")))

		got, err := repo.FindActive(ctx, "ledger-a@x.com", HashCode("111111"), now)
		require.NoError(t, err)
		assert.Equal(t, "ledger-a@x.com", got.Email)
		assert.WithinDuration(t, now.Add(DefaultTTL), got.ExpiresAt, time.Second)
	})

	t.Run("replace removes older records", func(t *testing.T) {
		require.NoError(t, repo.Replace(ctx, record("ledger-b@x.com", "111111")))
		require.NoError(t, repo.Replace(ctx, record("ledger-b@x.com", "222222")))

		_, err := repo.FindActive(ctx, "ledger-b@x.com", HashCode("111111"), now)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.FindActive(ctx, "ledger-b@x.com", HashCode("222222"), now)
		assert.NoError(t, err)
	})

	t.Run("expired records are not active", func(t *testing.T) {
		require.NoError(t, repo.Replace(ctx, record("ledger-c@x.com", "333333")))

		_, err := repo.FindActive(ctx, "ledger-c@x.com", HashCode("333333"), now.Add(DefaultTTL))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete all", func(t *testing.T) {
		require.NoError(t, repo.Replace(ctx, record("ledger-d@x.com", "444444")))
		require.NoError(t, repo.DeleteAll(ctx, "ledger-d@x.com"))

		_, err := repo.FindActive(ctx, "ledger-d@x.com", HashCode("444444"), now)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, repo.DeleteAll(ctx, "never-issued@x.com"))
	})
}

func TestInMemoryRepository(t *testing.T) {
	testLedger(t, NewInMemoryRepository())
}

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping PostgreSQL test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "idm_db.sql")),
		postgres.WithDatabase("idm_db"),
		postgres.WithUsername("idm"),
		postgres.WithPassword("pwd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	defer pool.Close()

	testLedger(t, NewPostgresRepository(pool))
}

func TestRedisRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	repo := NewRedisRepository(client, "test-otp:")
	testLedger(t, repo)

	t.Run("key carries the code ttl", func(t *testing.T) {
		now := time.Now().UTC()
		require.NoError(t, repo.Replace(ctx, Record{Email: "ttl@x.com", CodeHash: HashCode("555555"), CreatedAt: now, ExpiresAt: now.Add(DefaultTTL)}))

		ttl, err := client.TTL(ctx, "test-otp:ttl@x.com").Result()
		require.NoError(t, err)
		assert.InDelta(t, DefaultTTL.Seconds(), ttl.Seconds(), 5)
	})
}

func TestNewRepository(t *testing.T) {
	repo, err := NewRepository("memory", RepositoryConfig{})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryRepository{}, repo)

	_, err = NewRepository("postgres", RepositoryConfig{})
	assert.Error(t, err)

	_, err = NewRepository("redis", RepositoryConfig{})
	assert.Error(t, err)

	_, err = NewRepository("mongo", RepositoryConfig{})
	assert.Error(t, err)
}
