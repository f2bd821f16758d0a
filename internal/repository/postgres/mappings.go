package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
	"github.com/Triple-C-BE/wimood/pkg/errors"
)

type mappingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMappingRepository creates a new product mapping repository
func NewMappingRepository(db *sql.DB, logger *zap.Logger) *mappingRepository {
	return &mappingRepository{
		db:     db,
		logger: logger,
	}
}

const mappingColumns = `
	m.wimood_product_id, m.shopify_product_id, m.sku,
	m.title, m.price, m.wholesale_price, m.stock, m.brand, m.ean,
	(c.sku IS NOT NULL) AS cost_synced,
	m.created_at, m.updated_at
`

func (r *mappingRepository) scanMapping(row interface{ Scan(...interface{}) error }) (*domain.ProductMapping, error) {
	var m domain.ProductMapping
	err := row.Scan(
		&m.WimoodProductID,
		&m.ShopifyProductID,
		&m.SKU,
		&m.Title,
		&m.Price,
		&m.WholesalePrice,
		&m.Stock,
		&m.Brand,
		&m.EAN,
		&m.CostSynced,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mappingRepository) GetByWimoodID(ctx context.Context, wimoodProductID string) (*domain.ProductMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM product_mapping m
		LEFT JOIN cost_sync_status c ON c.sku = m.sku
		WHERE m.wimood_product_id = $1
	`

	m, err := r.scanMapping(r.db.QueryRowContext(ctx, query, wimoodProductID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product_mapping", ID: wimoodProductID}
	}
	if err != nil {
		r.logger.Error("Failed to get mapping by Wimood ID", zap.Error(err))
		return nil, err
	}

	return m, nil
}

func (r *mappingRepository) GetBySKU(ctx context.Context, sku string) (*domain.ProductMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM product_mapping m
		LEFT JOIN cost_sync_status c ON c.sku = m.sku
		WHERE m.sku = $1
	`

	m, err := r.scanMapping(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product_mapping", ID: sku}
	}
	if err != nil {
		r.logger.Error("Failed to get mapping by SKU", zap.Error(err))
		return nil, err
	}

	return m, nil
}

func (r *mappingRepository) GetAll(ctx context.Context) ([]*domain.ProductMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM product_mapping m
		LEFT JOIN cost_sync_status c ON c.sku = m.sku
		ORDER BY m.sku
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list mappings", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var mappings []*domain.ProductMapping
	for rows.Next() {
		m, err := r.scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

func (r *mappingRepository) Upsert(ctx context.Context, m *domain.ProductMapping) error {
	query := `
		INSERT INTO product_mapping (
			wimood_product_id, shopify_product_id, sku,
			title, price, wholesale_price, stock, brand, ean,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (wimood_product_id) DO UPDATE SET
			shopify_product_id = EXCLUDED.shopify_product_id,
			sku = EXCLUDED.sku,
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			wholesale_price = EXCLUDED.wholesale_price,
			stock = EXCLUDED.stock,
			brand = EXCLUDED.brand,
			ean = EXCLUDED.ean,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		m.WimoodProductID,
		m.ShopifyProductID,
		m.SKU,
		m.Title,
		m.Price,
		m.WholesalePrice,
		m.Stock,
		m.Brand,
		m.EAN,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to upsert mapping",
			zap.String("wimood_product_id", m.WimoodProductID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("Mapped Wimood product to Shopify",
		zap.String("wimood_product_id", m.WimoodProductID),
		zap.Int64("shopify_product_id", m.ShopifyProductID),
		zap.String("sku", m.SKU),
	)
	return nil
}

func (r *mappingRepository) Remove(ctx context.Context, wimoodProductID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM product_mapping WHERE wimood_product_id = $1`, wimoodProductID)
	if err != nil {
		r.logger.Error("Failed to remove mapping", zap.Error(err))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *mappingRepository) IsCostSynced(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cost_sync_status WHERE sku = $1)`, sku).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check cost sync status", zap.String("sku", sku), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *mappingRepository) MarkCostSynced(ctx context.Context, sku string) error {
	query := `
		INSERT INTO cost_sync_status (sku, synced_at)
		VALUES ($1, now())
		ON CONFLICT (sku) DO UPDATE SET synced_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, sku); err != nil {
		r.logger.Error("Failed to mark cost synced", zap.String("sku", sku), zap.Error(err))
		return err
	}
	return nil
}

func (r *mappingRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product_mapping`).Scan(&count)
	return count, err
}
