package product

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/milletmart/milletmart-backend/pkg/db"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	"github.com/milletmart/milletmart-backend/pkg/pagination"
	"github.com/milletmart/milletmart-backend/pkg/types"
)

func newTestRepo(t *testing.T) *GormRepository {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))

	return NewGormRepository(db.NewWithConn(conn, 1, time.Millisecond))
}

func seedProduct(t *testing.T, repo *GormRepository, slug, name, category string, featured bool) *models.Product {
	t.Helper()

	created, err := repo.Create(context.Background(), &models.Product{
		Slug:        slug,
		Name:        name,
		Description: name + " grown without pesticides",
		Price:       decimal.NewFromInt(120),
		Category:    category,
		InStock:     true,
		Featured:    featured,
		WeightPrices: types.WeightPrices{
			"500g": decimal.NewFromInt(70),
		},
	})
	require.NoError(t, err)
	return created
}

func TestGormRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedProduct(t, repo, "foxtail-millet", "Foxtail Millet", "grains", true)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Foxtail Millet", byID.Name)
	require.True(t, byID.Price.Equal(decimal.NewFromInt(120)))

	bySlug, err := repo.GetBySlug(ctx, "foxtail-millet")
	require.NoError(t, err)
	require.Equal(t, created.ID, bySlug.ID)

	price, ok := bySlug.WeightPrices.Resolve("500g")
	require.True(t, ok)
	require.True(t, price.Equal(decimal.NewFromInt(70)))

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGormRepositorySlugUnique(t *testing.T) {
	repo := newTestRepo(t)

	seedProduct(t, repo, "ragi-flour", "Ragi Flour", "flour", false)
	_, err := repo.Create(context.Background(), &models.Product{
		Slug: "ragi-flour",
		Name: "Another Ragi",
	})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, "idx_products_slug"))
}

func TestGormRepositoryListsAndFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProduct(t, repo, "foxtail-millet", "Foxtail Millet", "grains", true)
	seedProduct(t, repo, "ragi-flour", "Ragi Flour", "flour", false)
	seedProduct(t, repo, "millet-cookies", "Millet Cookies", "snacks", true)

	all, err := repo.List(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	featured, err := repo.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)

	flour, err := repo.ListByCategory(ctx, "Flour")
	require.NoError(t, err)
	require.Len(t, flour, 1)
	require.Equal(t, "ragi-flour", flour[0].Slug)
}

func TestGormRepositorySearch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedProduct(t, repo, "foxtail-millet", "Foxtail Millet", "grains", false)
	seedProduct(t, repo, "ragi-flour", "Ragi Flour", "flour", false)

	byName, err := repo.Search(ctx, "FOXTAIL")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "foxtail-millet", byName[0].Slug)

	byCategory, err := repo.Search(ctx, "flou")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	empty, err := repo.Search(ctx, "   ")
	require.NoError(t, err)
	require.Len(t, empty, 2)

	none, err := repo.Search(ctx, "quinoa")
	require.NoError(t, err)
	require.Empty(t, none)
}
