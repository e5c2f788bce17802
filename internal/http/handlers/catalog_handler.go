package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "velours/internal/log"
	"velours/internal/services"
	"velours/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "12"))
	if pageSize > 50 {
		pageSize = 50
	}
	products, err := h.Catalog.ListProducts(c.Query("brand"), c.Query("category"), c.Query("status"), page, pageSize)
	if err != nil {
		applog.Error(c, "catalog.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
	}
	return c.JSON(fiber.Map{"products": products})
}

// GET /api/v1/products/:id
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		applog.Error(c, "catalog.detail.fail", err, map[string]any{"product": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load product"})
	}
	return c.JSON(p)
}

// GET /api/v1/brands
func (h *CatalogHandler) Brands(c *fiber.Ctx) error {
	brands, err := h.Catalog.Brands()
	if err != nil {
		applog.Error(c, "catalog.brands.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load brands"})
	}
	return c.JSON(fiber.Map{"brands": brands})
}

// GET /api/v1/categories
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories()
	if err != nil {
		applog.Error(c, "catalog.categories.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load categories"})
	}
	return c.JSON(fiber.Map{"categories": cats})
}
