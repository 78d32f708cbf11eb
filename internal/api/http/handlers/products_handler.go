package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/api/dto"
	"github.com/spec-kit/storefront-service/internal/service"
	apperrors "github.com/spec-kit/storefront-service/pkg/util/errorutil"
)

// ProductsHandler exposes catalog endpoints.
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(catalogService *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalogService}
}

// ListAll handles GET /api/products (admin).
func (h *ProductsHandler) ListAll(c *fiber.Ctx) error {
	products, err := h.catalog.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

// Featured handles GET /api/products/featured.
func (h *ProductsHandler) Featured(c *fiber.Ctx) error {
	products, err := h.catalog.GetFeatured(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

// ByCategory handles GET /api/products/category/:category.
func (h *ProductsHandler) ByCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	if category == "" {
		return apperrors.NewValidationError("category required", nil)
	}
	products, err := h.catalog.ListByCategory(c.Context(), category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

// Recommended handles GET /api/products/recommendations.
func (h *ProductsHandler) Recommended(c *fiber.Ctx) error {
	products, err := h.catalog.Recommended(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

// Create handles POST /api/products (admin).
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Category == "" {
		return apperrors.NewValidationError("name and category required", nil)
	}
	if req.Price < 0 {
		return apperrors.NewValidationError("price must not be negative", nil)
	}

	product, err := h.catalog.Create(c.Context(), service.ProductCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": product})
}

// Delete handles DELETE /api/products/:id (admin).
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "product deleted successfully"})
}

// ToggleFeatured handles PATCH /api/products/:id (admin).
func (h *ProductsHandler) ToggleFeatured(c *fiber.Ctx) error {
	product, err := h.catalog.ToggleFeatured(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}
