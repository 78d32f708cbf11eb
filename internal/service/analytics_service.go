package service

import (
	"context"

	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

// AnalyticsSummary aggregates storefront totals for the admin dashboard.
type AnalyticsSummary struct {
	TotalUsers     int64                      `json:"total_users"`
	TotalProducts  int64                      `json:"total_products"`
	FeaturedCount  int64                      `json:"featured_count"`
	CategoryCounts []repository.CategoryCount `json:"category_counts"`
}

// AnalyticsService computes admin-facing aggregates.
type AnalyticsService struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(userRepo repository.UserRepository, productRepo repository.ProductRepository) *AnalyticsService {
	return &AnalyticsService{users: userRepo, products: productRepo}
}

// Summary computes the current totals.
func (s *AnalyticsService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	featured := true
	featuredProducts, err := s.products.FindAll(ctx, repository.ProductFilter{Featured: &featured})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	categories, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	return &AnalyticsSummary{
		TotalUsers:     users,
		TotalProducts:  products,
		FeaturedCount:  int64(len(featuredProducts)),
		CategoryCounts: categories,
	}, nil
}
