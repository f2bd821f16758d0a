package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
	apperrors "github.com/Triple-C-BE/wimood/pkg/errors"
)

var mappingColumnNames = []string{
	"wimood_product_id", "shopify_product_id", "sku",
	"title", "price", "wholesale_price", "stock", "brand", "ean",
	"cost_synced", "created_at", "updated_at",
}

func newMappingRows(wimoodID string, shopifyID int64, sku string, costSynced bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(mappingColumnNames).AddRow(
		wimoodID, shopifyID, sku,
		"Lamp", "199.90", "89.50", 12, "Wimood", "8719325000001",
		costSynced, now, now,
	)
}

func TestMappingRepositoryGetBySKU(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMappingRepository(db, zap.NewNop())

	t.Run("found with cost synced from join", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM product_mapping m\\s+LEFT JOIN cost_sync_status c").
			WithArgs("W101").
			WillReturnRows(newMappingRows("101", 2001, "W101", true))

		m, err := repo.GetBySKU(context.Background(), "W101")
		require.NoError(t, err)
		assert.Equal(t, "101", m.WimoodProductID)
		assert.Equal(t, int64(2001), m.ShopifyProductID)
		assert.True(t, m.CostSynced)
		assert.Equal(t, 12, m.Stock)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM product_mapping m\\s+LEFT JOIN cost_sync_status c").
			WithArgs("MISSING").
			WillReturnRows(sqlmock.NewRows(mappingColumnNames))

		_, err := repo.GetBySKU(context.Background(), "MISSING")
		var notFound *apperrors.ErrNotFound
		require.ErrorAs(t, err, &notFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingRepositoryUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMappingRepository(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO product_mapping").
		WithArgs("101", int64(2001), "W101", "Lamp", "199.90", "89.50", 12,
			"Wimood", "8719325000001", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), &domain.ProductMapping{
		WimoodProductID:  "101",
		ShopifyProductID: 2001,
		SKU:              "W101",
		Title:            "Lamp",
		Price:            "199.90",
		WholesalePrice:   "89.50",
		Stock:            12,
		Brand:            "Wimood",
		EAN:              "8719325000001",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingRepositoryCostSync(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMappingRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("W101").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO cost_sync_status").
		WithArgs("W101").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("W101").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	synced, err := repo.IsCostSynced(context.Background(), "W101")
	require.NoError(t, err)
	assert.False(t, synced)

	require.NoError(t, repo.MarkCostSynced(context.Background(), "W101"))

	synced, err = repo.IsCostSynced(context.Background(), "W101")
	require.NoError(t, err)
	assert.True(t, synced)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingRepositoryRemove(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMappingRepository(db, zap.NewNop())

	mock.ExpectExec("DELETE FROM product_mapping").
		WithArgs("101").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM product_mapping").
		WithArgs("999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Remove(context.Background(), "101")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(context.Background(), "999")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, mock.ExpectationsWereMet())
}
