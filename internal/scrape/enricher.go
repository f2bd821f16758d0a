package scrape

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
)

// Enricher extracts description, images and specs for a product. The
// concrete implementation (HTML scraper) lives outside this module; the
// sync only decides when to call it.
type Enricher interface {
	Scrape(ctx context.Context, candidate domain.CandidateProduct) (*domain.ScrapedData, error)
}

// Stats counts what one enrichment pass did.
type Stats struct {
	Scraped int
	Cached  int
	Failed  int
}

// Service applies cache-first enrichment to feed candidates.
type Service struct {
	enricher Enricher
	cache    *Cache
	maxAge   time.Duration
	logger   *zap.Logger
}

// NewService creates an enrichment service. enricher may be nil, in which
// case only cached data is applied.
func NewService(enricher Enricher, cache *Cache, maxAge time.Duration, logger *zap.Logger) *Service {
	return &Service{
		enricher: enricher,
		cache:    cache,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// EnrichAll merges enrichment data into every candidate in place: fresh
// cache entries are used as-is, stale or missing ones go through the
// scraper, and scrape failures leave the candidate bare. The cache is
// saved once at the end.
func (s *Service) EnrichAll(ctx context.Context, candidates []domain.CandidateProduct) (Stats, []domain.CandidateProduct) {
	var stats Stats

	for i := range candidates {
		sku := candidates[i].SKU
		if sku == "" {
			continue
		}

		if !s.cache.IsStale(sku, s.maxAge) {
			if data := s.cache.Get(sku); data != nil {
				apply(&candidates[i], data)
				stats.Cached++
				continue
			}
		}

		if s.enricher == nil {
			continue
		}

		data, err := s.enricher.Scrape(ctx, candidates[i])
		if err != nil || data == nil {
			if err != nil {
				s.logger.Debug("Scrape failed", zap.String("sku", sku), zap.Error(err))
			}
			stats.Failed++
			continue
		}

		apply(&candidates[i], data)
		s.cache.Set(sku, data)
		stats.Scraped++
	}

	if err := s.cache.Save(); err != nil {
		s.logger.Error("Failed to save scrape cache", zap.Error(err))
	}

	s.logger.Info("Enrichment complete",
		zap.Int("scraped", stats.Scraped),
		zap.Int("cached", stats.Cached),
		zap.Int("failed", stats.Failed),
	)
	return stats, candidates
}

// EnrichOne applies cache-first enrichment to a single candidate without
// saving the cache; quick mode uses it for new products only.
func (s *Service) EnrichOne(ctx context.Context, candidate *domain.CandidateProduct) {
	sku := candidate.SKU
	if sku == "" {
		return
	}

	if !s.cache.IsStale(sku, s.maxAge) {
		if data := s.cache.Get(sku); data != nil {
			apply(candidate, data)
			return
		}
	}

	if s.enricher == nil {
		return
	}

	data, err := s.enricher.Scrape(ctx, *candidate)
	if err != nil || data == nil {
		return
	}
	apply(candidate, data)
	s.cache.Set(sku, data)
}

// SaveCache flushes the cache to disk.
func (s *Service) SaveCache() error {
	return s.cache.Save()
}

func apply(candidate *domain.CandidateProduct, data *domain.ScrapedData) {
	candidate.Description = data.Description
	candidate.Images = data.Images
	candidate.Specs = data.Specs
}
