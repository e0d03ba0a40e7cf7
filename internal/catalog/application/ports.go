package application

import (
	"context"

	"github.com/ateliemimos/store/internal/catalog/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) error
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, onlyAvailable bool, category string) ([]domain.Product, error)
	Featured(ctx context.Context, limit int) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}
