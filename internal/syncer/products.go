package syncer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/config"
	"github.com/Triple-C-BE/wimood/internal/domain"
	"github.com/Triple-C-BE/wimood/internal/repository"
	"github.com/Triple-C-BE/wimood/internal/scrape"
	"github.com/Triple-C-BE/wimood/internal/shopify"
	pkgerrors "github.com/Triple-C-BE/wimood/pkg/errors"
)

// ProductResults counts the outcome of one product sync cycle.
type ProductResults struct {
	Created     int
	Updated     int
	Skipped     int
	Deactivated int
	Errors      int
	Duration    time.Duration
}

// ProductSyncer reconciles the Wimood feed against the Shopify catalog.
// Full mode fetches the whole managed catalog and diffs it; quick mode
// diffs against the mapping-store snapshot and only fetches products whose
// feed values changed.
type ProductSyncer struct {
	catalog    CatalogAPI
	mappings   repository.MappingRepository
	enrich     *scrape.Service
	mode       string
	scrapeMode string
	logger     *zap.Logger
}

// NewProductSyncer creates a product syncer. enrich may be nil when
// scraping is disabled.
func NewProductSyncer(catalog CatalogAPI, mappings repository.MappingRepository, enrich *scrape.Service, mode, scrapeMode string, logger *zap.Logger) *ProductSyncer {
	return &ProductSyncer{
		catalog:    catalog,
		mappings:   mappings,
		enrich:     enrich,
		mode:       mode,
		scrapeMode: scrapeMode,
		logger:     logger,
	}
}

// Run reconciles one feed snapshot. The candidates come from a successful
// feed fetch; per-product failures are counted in Results.Errors and never
// abort the cycle. Only a failed catalog fetch (full mode) is fatal.
func (s *ProductSyncer) Run(ctx context.Context, candidates []domain.CandidateProduct) (ProductResults, error) {
	start := time.Now()

	var results ProductResults
	var err error
	if s.mode == config.ProductModeQuick {
		results, err = s.runQuick(ctx, candidates)
	} else {
		results, err = s.runFull(ctx, candidates)
	}
	results.Duration = time.Since(start)

	if err != nil {
		return results, err
	}

	s.logger.Info("Product sync cycle complete",
		zap.String("mode", s.mode),
		zap.Int("created", results.Created),
		zap.Int("updated", results.Updated),
		zap.Int("skipped", results.Skipped),
		zap.Int("deactivated", results.Deactivated),
		zap.Int("errors", results.Errors),
		zap.Duration("duration", results.Duration),
	)
	return results, nil
}

func (s *ProductSyncer) runFull(ctx context.Context, candidates []domain.CandidateProduct) (ProductResults, error) {
	var results ProductResults

	if s.enrich != nil && s.scrapeMode == config.ScrapeModeFull {
		_, candidates = s.enrich.EnrichAll(ctx, candidates)
	}

	existing, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return results, err
	}

	byID := make(map[int64]*shopify.Product, len(existing))
	bySKU := make(map[string]*shopify.Product, len(existing))
	for i := range existing {
		p := &existing[i]
		byID[p.ID] = p
		if sku := p.SKU(); sku != "" {
			bySKU[sku] = p
		}
	}

	seen := make(map[string]bool, len(candidates))

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.SKU == "" {
			s.logger.Warn("Skipping feed product without SKU",
				zap.String("wimood_product_id", candidate.WimoodProductID))
			results.Skipped++
			continue
		}
		seen[candidate.SKU] = true

		product, mapped := s.resolveExisting(ctx, candidate, byID, bySKU)
		if product == nil {
			if s.enrich != nil && s.scrapeMode == config.ScrapeModeNewOnly {
				s.enrich.EnrichOne(ctx, candidate)
			}
			if s.createProduct(ctx, candidate) {
				results.Created++
			} else {
				results.Errors++
			}
			continue
		}

		if s.needsUpdate(product, candidate) {
			if s.updateProduct(ctx, product, candidate) {
				results.Updated++
			} else {
				results.Errors++
			}
			continue
		}

		results.Skipped++
		s.backfillSkipped(ctx, product, candidate, mapped)
	}

	if s.enrich != nil && s.scrapeMode == config.ScrapeModeNewOnly {
		if err := s.enrich.SaveCache(); err != nil {
			s.logger.Error("Failed to save scrape cache", zap.Error(err))
		}
	}

	// Deactivation sweep: any managed product still active whose SKU is
	// absent from this feed snapshot has been discontinued upstream.
	for sku, product := range bySKU {
		if seen[sku] || product.Status != "active" {
			continue
		}
		if err := s.catalog.DeactivateProduct(ctx, product.ID); err != nil {
			s.logger.Error("Failed to deactivate discontinued product",
				zap.Int64("shopify_product_id", product.ID),
				zap.String("sku", sku),
				zap.Error(err))
			results.Errors++
			continue
		}
		results.Deactivated++
	}

	return results, nil
}

func (s *ProductSyncer) runQuick(ctx context.Context, candidates []domain.CandidateProduct) (ProductResults, error) {
	var results ProductResults

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.SKU == "" {
			results.Skipped++
			continue
		}

		mapping, err := s.mappings.GetBySKU(ctx, candidate.SKU)
		if err != nil {
			var notFound *pkgerrors.ErrNotFound
			if !errors.As(err, &notFound) {
				s.logger.Error("Failed to read product mapping",
					zap.String("sku", candidate.SKU), zap.Error(err))
				results.Errors++
				continue
			}

			if s.enrich != nil && (s.scrapeMode == config.ScrapeModeFull || s.scrapeMode == config.ScrapeModeNewOnly) {
				s.enrich.EnrichOne(ctx, candidate)
			}
			if s.createProduct(ctx, candidate) {
				results.Created++
			} else {
				results.Errors++
			}
			continue
		}

		if !s.snapshotChanged(mapping, candidate) {
			results.Skipped++
			continue
		}

		product, err := s.catalog.GetProduct(ctx, mapping.ShopifyProductID)
		if err != nil {
			s.logger.Error("Failed to fetch changed product",
				zap.Int64("shopify_product_id", mapping.ShopifyProductID),
				zap.String("sku", candidate.SKU),
				zap.Error(err))
			results.Errors++
			continue
		}

		if s.updateProduct(ctx, product, candidate) {
			results.Updated++
		} else {
			results.Errors++
		}
	}

	if s.enrich != nil {
		if err := s.enrich.SaveCache(); err != nil {
			s.logger.Error("Failed to save scrape cache", zap.Error(err))
		}
	}

	return results, nil
}

// resolveExisting finds the Shopify product a candidate corresponds to:
// first through the stored mapping, then by SKU match against the fetched
// catalog. A stale mapping pointing at a product no longer in the catalog
// falls through to the SKU match. The second return reports whether a
// mapping row already exists for the candidate.
func (s *ProductSyncer) resolveExisting(ctx context.Context, candidate *domain.CandidateProduct, byID map[int64]*shopify.Product, bySKU map[string]*shopify.Product) (*shopify.Product, bool) {
	mapping, err := s.mappings.GetByWimoodID(ctx, candidate.WimoodProductID)
	if err == nil {
		if p, ok := byID[mapping.ShopifyProductID]; ok {
			return p, true
		}
		return bySKU[candidate.SKU], true
	}

	var notFound *pkgerrors.ErrNotFound
	if !errors.As(err, &notFound) {
		s.logger.Warn("Failed to read product mapping",
			zap.String("wimood_product_id", candidate.WimoodProductID),
			zap.Error(err))
	}
	return bySKU[candidate.SKU], false
}

// needsUpdate is the full-mode diff predicate: title mismatch, normalized
// retail price mismatch, non-active status (discontinued product back in
// the feed), missing description with one available, or the feed carrying
// more images than the store has.
func (s *ProductSyncer) needsUpdate(product *shopify.Product, candidate *domain.CandidateProduct) bool {
	if product.Title != candidate.Title {
		return true
	}
	if v := product.FirstVariant(); v != nil && !PricesEqual(v.Price, candidate.Price) {
		return true
	}
	if product.Status != "active" {
		return true
	}
	if candidate.Description != "" && strings.TrimSpace(product.BodyHTML) == "" {
		return true
	}
	if len(candidate.Images) > len(product.Images) {
		return true
	}
	return false
}

// snapshotChanged is the quick-mode diff: title, normalized price or stock
// differing from the last-synced snapshot.
func (s *ProductSyncer) snapshotChanged(mapping *domain.ProductMapping, candidate *domain.CandidateProduct) bool {
	return mapping.Title != candidate.Title ||
		!PricesEqual(mapping.Price, candidate.Price) ||
		mapping.Stock != candidate.Stock
}

func (s *ProductSyncer) createProduct(ctx context.Context, candidate *domain.CandidateProduct) bool {
	product, err := s.catalog.CreateProduct(ctx, *candidate)
	if err != nil {
		s.logger.Error("Failed to create product",
			zap.String("sku", candidate.SKU),
			zap.String("title", candidate.Title),
			zap.Error(err))
		return false
	}

	s.persistMapping(ctx, candidate, product.ID)
	s.syncInventory(ctx, product, candidate, false)
	return true
}

func (s *ProductSyncer) updateProduct(ctx context.Context, existing *shopify.Product, candidate *domain.CandidateProduct) bool {
	var variantID int64
	if v := existing.FirstVariant(); v != nil {
		variantID = v.ID
	}

	updated, err := s.catalog.UpdateProduct(ctx, existing.ID, variantID, *candidate)
	if err != nil {
		s.logger.Error("Failed to update product",
			zap.Int64("shopify_product_id", existing.ID),
			zap.String("sku", candidate.SKU),
			zap.Error(err))
		return false
	}
	if updated == nil {
		updated = existing
	}

	s.persistMapping(ctx, candidate, existing.ID)
	s.syncInventory(ctx, updated, candidate, false)
	return true
}

// backfillSkipped runs on unchanged products: adopt a mapping for products
// matched by SKU before any mapping existed, and push the wholesale cost
// once for products created before cost syncing existed.
func (s *ProductSyncer) backfillSkipped(ctx context.Context, product *shopify.Product, candidate *domain.CandidateProduct, mapped bool) {
	if !mapped {
		s.persistMapping(ctx, candidate, product.ID)
	}
	s.syncInventory(ctx, product, candidate, true)
}

// persistMapping upserts the mapping with a fresh feed snapshot.
func (s *ProductSyncer) persistMapping(ctx context.Context, candidate *domain.CandidateProduct, shopifyProductID int64) {
	m := &domain.ProductMapping{
		WimoodProductID:  candidate.WimoodProductID,
		ShopifyProductID: shopifyProductID,
		SKU:              candidate.SKU,
		Title:            candidate.Title,
		Price:            NormalizePrice(candidate.Price),
		WholesalePrice:   candidate.WholesalePrice,
		Stock:            candidate.Stock,
		Brand:            candidate.Brand,
		EAN:              candidate.EAN,
	}
	if err := s.mappings.Upsert(ctx, m); err != nil {
		s.logger.Error("Failed to persist product mapping",
			zap.String("sku", candidate.SKU),
			zap.Int64("shopify_product_id", shopifyProductID),
			zap.Error(err))
	}
}

// syncInventory pushes the stock level and, when not yet done for this SKU,
// the wholesale cost onto the inventory item. Failures here are logged but
// do not fail the product: stock and cost converge on a later cycle.
// costOnly is used on the skip path, where the stock level is already
// covered by the snapshot diff.
func (s *ProductSyncer) syncInventory(ctx context.Context, product *shopify.Product, candidate *domain.CandidateProduct, costOnly bool) {
	variant := product.FirstVariant()
	if variant == nil || variant.InventoryItemID == 0 {
		return
	}

	if !costOnly {
		if err := s.catalog.SetInventoryLevel(ctx, variant.InventoryItemID, candidate.Stock); err != nil {
			s.logger.Error("Failed to set inventory level",
				zap.String("sku", candidate.SKU), zap.Error(err))
		}
	}

	if candidate.WholesalePrice == "" || candidate.WholesalePrice == "0.00" {
		return
	}
	synced, err := s.mappings.IsCostSynced(ctx, candidate.SKU)
	if err != nil || synced {
		return
	}
	if err := s.catalog.SetInventoryCost(ctx, variant.InventoryItemID, candidate.WholesalePrice); err != nil {
		s.logger.Error("Failed to set inventory cost",
			zap.String("sku", candidate.SKU), zap.Error(err))
		return
	}
	if err := s.mappings.MarkCostSynced(ctx, candidate.SKU); err != nil {
		s.logger.Error("Failed to record cost sync",
			zap.String("sku", candidate.SKU), zap.Error(err))
	}
}
