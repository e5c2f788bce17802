package services

import (
	"database/sql"
	"errors"
	"fmt"

	"velours/internal/domain"
	"velours/internal/repos"
)

// CatalogService is the read-only storefront projection over products.
type CatalogService struct {
	Products *repos.ProductRepo
}

func NewCatalogService(products *repos.ProductRepo) *CatalogService {
	return &CatalogService{Products: products}
}

func (s *CatalogService) ListProducts(brand, category, status string, page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Products.List(brand, category, status, pageSize, offset)
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Products.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return p, err
}

func (s *CatalogService) Brands() ([]string, error) { return s.Products.Brands() }

func (s *CatalogService) Categories() ([]string, error) { return s.Products.Categories() }
