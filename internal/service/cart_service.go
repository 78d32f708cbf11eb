package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

// CartService coordinates per-user cart operations.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartService constructs the service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{carts: cartRepo, products: productRepo}
}

// ListCart returns the user's cart joined with product details.
func (s *CartService) ListCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	lines, err := s.carts.ListWithProducts(ctx, userID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return lines, nil
}

// AddItem adds one unit of the product to the cart, creating the line when
// absent.
func (s *CartService) AddItem(ctx context.Context, userID, productID string) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", nil)
		}
		return apperrors.NewStoreUnavailable(err)
	}
	if err := s.carts.Upsert(ctx, userID, productID); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// UpdateQuantity sets the line quantity; zero removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 0 {
		return apperrors.NewValidationError("quantity must not be negative", nil)
	}
	if err := s.carts.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}
