package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
)

func newTestRepo(t *testing.T) (*GormRepository, uuid.UUID) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.CartItem{}))

	product := models.Product{
		Slug:    "foxtail-millet",
		Name:    "Foxtail Millet",
		Price:   decimal.NewFromInt(120),
		InStock: true,
	}
	require.NoError(t, conn.Create(&product).Error)

	return NewGormRepository(db.NewWithConn(conn, 1, time.Millisecond)), product.ID
}

func TestAddLineMergesSameVariant(t *testing.T) {
	repo, productID := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AddLine(ctx, &models.CartItem{
		SessionID:      "sess-1",
		ProductID:      productID,
		Quantity:       1,
		SelectedWeight: "500g",
	})
	require.NoError(t, err)

	second, err := repo.AddLine(ctx, &models.CartItem{
		SessionID:      "sess-1",
		ProductID:      productID,
		Quantity:       2,
		SelectedWeight: "500g",
	})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 3, second.Quantity)

	require.NotNil(t, first.Product)
	require.NotNil(t, second.Product)
	require.Equal(t, "Foxtail Millet", second.Product.Name)

	rows, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestAddLineKeepsVariantsDistinct(t *testing.T) {
	repo, productID := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddLine(ctx, &models.CartItem{SessionID: "sess-1", ProductID: productID, Quantity: 1, SelectedWeight: "500g"})
	require.NoError(t, err)
	_, err = repo.AddLine(ctx, &models.CartItem{SessionID: "sess-1", ProductID: productID, Quantity: 1, SelectedWeight: "1kg"})
	require.NoError(t, err)
	_, err = repo.AddLine(ctx, &models.CartItem{SessionID: "sess-1", ProductID: productID, Quantity: 1})
	require.NoError(t, err)

	rows, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	noWeight, err := repo.FindLine(ctx, "sess-1", productID, "")
	require.NoError(t, err)
	require.Equal(t, 1, noWeight.Quantity)
}

func TestListBySessionPreloadsProduct(t *testing.T) {
	repo, productID := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddLine(ctx, &models.CartItem{SessionID: "sess-1", ProductID: productID, Quantity: 1})
	require.NoError(t, err)

	rows, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Product)
	require.Equal(t, "Foxtail Millet", rows[0].Product.Name)
}

func TestListBySessionKeepsDanglingLine(t *testing.T) {
	repo, productID := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddLine(ctx, &models.CartItem{SessionID: "sess-1", ProductID: productID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, repo.client.DB().Delete(&models.Product{}, "id = ?", productID).Error)

	rows, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].Product)
}

func TestClearSessionScopedToSession(t *testing.T) {
	repo, productID := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddLine(ctx, &models.CartItem{SessionID: "sess-1", ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	_, err = repo.AddLine(ctx, &models.CartItem{SessionID: "sess-2", ProductID: productID, Quantity: 4})
	require.NoError(t, err)

	require.NoError(t, repo.ClearSession(ctx, "sess-1"))

	cleared, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Empty(t, cleared)

	kept, err := repo.ListBySession(ctx, "sess-2")
	require.NoError(t, err)
	require.Len(t, kept, 1)
	require.Equal(t, 4, kept[0].Quantity)
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.UpdateQuantity(context.Background(), uuid.New(), 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
