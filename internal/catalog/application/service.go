package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ateliemimos/store/internal/catalog/domain"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrProductInUse: the product is referenced by at least one order and
	// cannot be removed; mark it unavailable instead.
	ErrProductInUse = errors.New("product has orders")
)

const featuredLimit = 6

type Service struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewService(log *slog.Logger, repo ProductRepository) *Service {
	return &Service{log: log, repo: repo}
}

// Featured returns the landing-page selection, available products only.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.repo.Featured(ctx, featuredLimit)
}

// Listing is the public catalog: available products, optionally filtered by
// category. Unavailable products are never publicly listed.
func (s *Service) Listing(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, true, category)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Product returns a product regardless of availability. Checkout needs this
// to distinguish "missing" from "unavailable"; public pages must use
// PublicProduct instead.
func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// PublicProduct hides unavailable products from the storefront.
func (s *Service) PublicProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !p.Available {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

// AdminListing shows every product, including unavailable ones.
func (s *Service) AdminListing(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, false, "")
}

func (s *Service) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) Update(ctx context.Context, p domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.log.Info("product updated", "product_id", p.ID)
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", "product_id", id)
	return nil
}
