package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
)

func newTestRepo(t *testing.T) *GormRepository {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))

	return NewGormRepository(db.NewWithConn(conn, 1, time.Millisecond))
}

func TestGormRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{
		Username:     "admin",
		PasswordHash: "$argon2id$stub",
		IsAdmin:      true,
	})
	require.NoError(t, err)
	require.NotEqual(t, "", created.ID.String())

	byName, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, byID.IsAdmin)
}

func TestGormRepositoryUnknownUsername(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGormRepositoryUpdateCommitsOTPState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Username: "admin", PasswordHash: "h", IsAdmin: true})
	require.NoError(t, err)

	secret := "JBSWY3DPEHPK3PXP"
	created.OTPSecret = &secret
	created.OTPEnabled = true
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	reloaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, reloaded.OTPEnabled)
	require.NotNil(t, reloaded.OTPSecret)
	require.Equal(t, secret, *reloaded.OTPSecret)
}

func TestMemoryRepositoryDuplicateUsername(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "admin", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Username: "admin", PasswordHash: "h2"})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
