package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/storefront-service/internal/domain"
)

const featuredProductsKey = "featured_products"

// CatalogCache holds the serialized featured-products snapshot. The entry
// has no TTL; it is only ever replaced by an explicit overwrite after a
// featured-touching write.
type CatalogCache interface {
	GetFeatured(ctx context.Context) ([]domain.Product, bool, error)
	SetFeatured(ctx context.Context, products []domain.Product) error
}

type redisCatalogCache struct {
	client *redis.Client
}

// NewCatalogCache returns a Redis-backed implementation.
func NewCatalogCache(client *redis.Client) CatalogCache {
	return &redisCatalogCache{client: client}
}

func (c *redisCatalogCache) GetFeatured(ctx context.Context) ([]domain.Product, bool, error) {
	raw, err := c.client.Get(ctx, featuredProductsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		// Corrupt entry behaves like a miss; the next populate replaces it.
		return nil, false, nil
	}
	return products, true, nil
}

func (c *redisCatalogCache) SetFeatured(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, featuredProductsKey, raw, 0).Err()
}
