package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/notes/internal/models"
	"github.com/Skotchmaster/notes/internal/testutil"
)

func newRefresh(userID string) *models.RefreshToken {
	now := time.Now().UTC()
	return &models.RefreshToken{
		Token:        uuid.NewString(),
		JwtID:        uuid.NewString(),
		UserID:       userID,
		CreationDate: now,
		ExpireDate:   now.AddDate(0, 1, 0),
	}
}

func TestRefreshStore_AddGetUpdate(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewSQLite(t))
	ctx := context.Background()

	rt := newRefresh("user-1")
	require.NoError(t, r.Add(ctx, rt))

	got, err := r.GetByToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.Equal(t, rt.JwtID, got.JwtID)
	assert.False(t, got.Used)
	assert.False(t, got.Invalidated)

	got.Invalidated = true
	require.NoError(t, r.Update(ctx, got))

	got, err = r.GetByToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.True(t, got.Invalidated)

	_, err = r.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, &models.RefreshToken{Token: "missing"}), ErrNotFound)
}

func TestConsumeRefreshToken_OnlyOnce(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewSQLite(t))
	ctx := context.Background()

	rt := newRefresh("user-1")
	require.NoError(t, r.Add(ctx, rt))

	ok, err := r.ConsumeRefreshToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ConsumeRefreshToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.GetByToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.True(t, got.Used)
}

func TestConsumeRefreshToken_Invalidated(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewSQLite(t))
	ctx := context.Background()

	rt := newRefresh("user-1")
	rt.Invalidated = true
	require.NoError(t, r.Add(ctx, rt))

	ok, err := r.ConsumeRefreshToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeRefreshToken_Concurrent(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewSQLite(t))
	ctx := context.Background()

	rt := newRefresh("user-1")
	require.NoError(t, r.Add(ctx, rt))

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.ConsumeRefreshToken(ctx, rt.Token)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func newMockRepo(t *testing.T) (*GormRepo, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return New(gdb), mock
}

func TestConsumeRefreshToken_PostgresConditionalUpdate(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "refresh_tokens" SET "used"=\$1 WHERE .*token = \$2 AND used = \$3 AND invalidated = \$4`).
		WithArgs(true, "tok-1", false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := r.ConsumeRefreshToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeRefreshToken_PostgresLostRace(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "refresh_tokens" SET "used"=\$1 WHERE`).
		WithArgs(true, "tok-2", false, false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.ConsumeRefreshToken(context.Background(), "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
