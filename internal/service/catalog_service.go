package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/events"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

const recommendedSampleSize = 3

// ProductCreateInput describes the product creation payload.
type ProductCreateInput struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Category    string
	IsFeatured  bool
}

// CatalogService coordinates catalog reads and writes and keeps the
// featured-products cache coherent with the product store. The cache is
// read-through on the featured listing and refreshed synchronously after
// every write that can change the featured set.
type CatalogService struct {
	products   repository.ProductRepository
	cache      repository.CatalogCache
	images     ImageStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CatalogDependencies bundles requirements for the catalog service.
type CatalogDependencies struct {
	ProductRepo repository.ProductRepository
	Cache       repository.CatalogCache
	Images      ImageStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		products:   deps.ProductRepo,
		cache:      deps.Cache,
		images:     deps.Images,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// ListAll returns the full catalog.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return products, nil
}

// ListByCategory returns products in the given category.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.products.FindAll(ctx, repository.ProductFilter{Category: &category})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return products, nil
}

// Recommended returns a small random sample of the catalog.
func (s *CatalogService) Recommended(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.SampleRandom(ctx, recommendedSampleSize)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return products, nil
}

// GetByID fetches a single product.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return product, nil
}

// GetFeatured returns the featured products, read-through cached under the
// featured_products sentinel. An empty featured set is a valid, cacheable
// result. A populate failure degrades to an uncached read.
func (s *CatalogService) GetFeatured(ctx context.Context) ([]domain.Product, error) {
	if cached, hit, err := s.cache.GetFeatured(ctx); err == nil && hit {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("featured cache read failed", zap.Error(err))
	}

	featured := true
	products, err := s.products.FindAll(ctx, repository.ProductFilter{Featured: &featured})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if err := s.cache.SetFeatured(ctx, products); err != nil {
		s.logger.Warn("featured cache populate failed", zap.Error(err))
	}
	return products, nil
}

// Create inserts a new product, uploading its image through the image
// store boundary first.
func (s *CatalogService) Create(ctx context.Context, input ProductCreateInput) (*domain.Product, error) {
	imageURL := ""
	if input.Image != "" {
		url, err := s.images.Upload(ctx, input.Image)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		imageURL = url
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       imageURL,
		Category:    input.Category,
		IsFeatured:  input.IsFeatured,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if product.IsFeatured {
		s.RefreshFeaturedCache(ctx)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventProductCreated,
		SubjectID: product.ID,
		Payload: events.ProductCreatedPayload{
			Name:     product.Name,
			Category: product.Category,
			Price:    product.Price,
			Featured: product.IsFeatured,
		},
	})
	return product, nil
}

// Delete removes a product. Image removal is best-effort; the featured
// cache is refreshed when the deleted product was featured.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", nil)
		}
		return apperrors.NewStoreUnavailable(err)
	}

	if product.Image != "" {
		if err := s.images.Remove(ctx, product.Image); err != nil {
			s.logger.Warn("failed to remove product image", zap.String("image", product.Image), zap.Error(err))
		}
	}

	if err := s.products.DeleteByID(ctx, id); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}

	if product.IsFeatured {
		s.RefreshFeaturedCache(ctx)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventProductDeleted,
		SubjectID: product.ID,
		Payload:   events.ProductDeletedPayload{Name: product.Name, Category: product.Category},
	})
	return nil
}

// ToggleFeatured flips a product's featured flag and refreshes the cache
// after the store write commits.
func (s *CatalogService) ToggleFeatured(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	product.IsFeatured = !product.IsFeatured
	if err := s.products.Save(ctx, product); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.RefreshFeaturedCache(ctx)

	s.publishEvent(ctx, events.Event{
		Type:      events.EventProductFeaturedToggled,
		SubjectID: product.ID,
		Payload:   events.ProductFeaturedToggledPayload{Name: product.Name, Featured: product.IsFeatured},
	})
	return product, nil
}

// RefreshFeaturedCache re-queries the featured set and unconditionally
// overwrites the cache entry. Failures are logged and swallowed: the
// catalog stays correct at the store level, only freshness degrades.
func (s *CatalogService) RefreshFeaturedCache(ctx context.Context) {
	featured := true
	products, err := s.products.FindAll(ctx, repository.ProductFilter{Featured: &featured})
	if err != nil {
		s.logger.Warn("featured cache refresh query failed", zap.Error(err))
		return
	}
	if err := s.cache.SetFeatured(ctx, products); err != nil {
		s.logger.Warn("featured cache refresh write failed", zap.Error(err))
	}
}

func (s *CatalogService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}
