package service

import (
	"encoding/json"
	"errors"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/store"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

// Catalog is the subset of the store the catalog endpoints read.
type Catalog interface {
	Services() (*model.ServicesPayload, error)
	Prices(slug string) (*model.PricesPayload, error)
	Continents() (json.RawMessage, error)
}

type CatalogService struct {
	store Catalog
}

func NewCatalogService(s Catalog) *CatalogService {
	return &CatalogService{store: s}
}

func (c *CatalogService) Services() (*model.ServicesPayload, error) {
	p, err := c.store.Services()
	return p, notFound(err, "service data not found")
}

// Prices returns the prices document exactly as stored.
func (c *CatalogService) Prices(slug string) (json.RawMessage, error) {
	if !validate.Slug(slug) {
		return nil, apperr.BadRequest("invalid service slug")
	}
	p, err := c.store.Prices(slug)
	if err != nil {
		return nil, notFound(err, "price data not found for this service")
	}
	return p.Raw, nil
}

func (c *CatalogService) Continents() (json.RawMessage, error) {
	raw, err := c.store.Continents()
	return raw, notFound(err, "continent data not found")
}

func notFound(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return apperr.Internal(err)
}
