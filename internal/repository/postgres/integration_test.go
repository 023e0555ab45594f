//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/voc-auth/internal/model"
	repo "github.com/dtroode/voc-auth/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "voc_auth_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/voc_auth_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func connect(t *testing.T) *repo.Connection {
	t.Helper()
	conn, err := repo.NewConection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newUser(email string) model.User {
	return model.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        email,
		PasswordHash: "$2a$04$abcdefghijklmnopqrstuuJ7cQ3r2mG6r9k1mW9mQ0yY3c1o5m2a",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestUserRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	ur := repo.NewUserRepository(connect(t))

	u := newUser("alice@example.com")
	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)
	assert.Nil(t, saved.ResetTokenHash)

	byEmail, err := ur.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	_, err = ur.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)

	ok, err := ur.UpdateCredentials(ctx, u.ID, "Alice B", "alice.b@example.com", "new-hash")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ur.UpdatePasswordHash(ctx, uuid.New(), "new-hash")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	ur := repo.NewUserRepository(connect(t))

	_, err := ur.Create(ctx, newUser("dup@example.com"))
	require.NoError(t, err)

	_, err = ur.Create(ctx, newUser("DUP@example.com"))
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	ur := repo.NewUserRepository(connect(t))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ur.Create(ctx, newUser("race@example.com"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, model.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestUserRepository_ResetTokenSingleUse(t *testing.T) {
	ctx := context.Background()
	ur := repo.NewUserRepository(connect(t))

	u := newUser("reset@example.com")
	_, err := ur.Create(ctx, u)
	require.NoError(t, err)

	now := time.Now().UTC()
	ok, err := ur.SetResetToken(ctx, u.ID, "digest", now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ur.ClearResetTokenIfMatches(ctx, u.Email, "other", "h1", now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ur.ClearResetTokenIfMatches(ctx, u.Email, "digest", "h1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ur.ClearResetTokenIfMatches(ctx, u.Email, "digest", "h2", now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.Nil(t, got.ResetTokenHash)
	assert.Nil(t, got.ResetTokenExpiresAt)
}

func TestUserRepository_ExpiredResetToken(t *testing.T) {
	ctx := context.Background()
	ur := repo.NewUserRepository(connect(t))

	u := newUser("expired@example.com")
	_, err := ur.Create(ctx, u)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = ur.SetResetToken(ctx, u.ID, "digest", now.Add(-time.Minute))
	require.NoError(t, err)

	ok, err := ur.ClearResetTokenIfMatches(ctx, u.Email, "digest", "h1", now)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := ur.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	got, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResetTokenHash)
}

func TestNotificationRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)
	ur := repo.NewUserRepository(conn)
	nr := repo.NewNotificationRepository(conn)

	owner := newUser("notify@example.com")
	_, err := ur.Create(ctx, owner)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, nr.Create(ctx, model.Notification{UserID: owner.ID, Message: "Welcome!", CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, nr.Create(ctx, model.Notification{UserID: owner.ID, Message: "Password changed", CreatedAt: now}))

	list, err := nr.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Password changed", list[0].Message)

	ok, err := nr.MarkRead(ctx, list[0].ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = nr.MarkRead(ctx, list[0].ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	empty, err := nr.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
