package usecase

import (
	"context"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/rs/zerolog"
)

const maxSearchLimit = 50

// CatalogSearch runs uncached product searches against the backend
type CatalogSearch struct {
	gateway      domain.RemoteGateway
	preprocessor *QueryPreprocessor
	logger       zerolog.Logger
}

// NewCatalogSearch creates a new catalog search service
func NewCatalogSearch(gateway domain.RemoteGateway, logger zerolog.Logger) *CatalogSearch {
	logger = logger.With().Str("component", "catalog_search").Logger()
	return &CatalogSearch{
		gateway:      gateway,
		preprocessor: NewQueryPreprocessor(logger),
		logger:       logger,
	}
}

// Search returns one page of matching products. A query that is empty after
// preprocessing and any backend failure both yield an empty page.
func (s *CatalogSearch) Search(ctx context.Context, query domain.SearchQuery) domain.SectionPage {
	query.Q = s.preprocessor.PreprocessQuery(query.Q)
	if query.Q == "" {
		return domain.EmptySectionPage()
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = DefaultPageLimit
	}
	if query.Limit > maxSearchLimit {
		query.Limit = maxSearchLimit
	}
	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		query.MinPrice, query.MaxPrice = query.MaxPrice, query.MinPrice
	}

	result, err := s.gateway.SearchProducts(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("q", query.Q).Int("page", query.Page).Msg("search failed")
		return domain.EmptySectionPage()
	}
	return toSectionPage(result)
}
