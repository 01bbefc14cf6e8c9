package product

import (
	"context"
	"strings"

	"signalcraft-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListAllProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, in CreateInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in UpdateInput) (*Product, error)
	DeactivateProduct(ctx context.Context, id string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx, true)
}

func (s *service) ListAllProducts(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx, false)
}

// GetProduct hides inactive products from the storefront.
func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) CreateProduct(ctx context.Context, in CreateInput) (*Product, error) {
	p := &Product{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(in.Title),
		SKU:              strings.TrimSpace(in.SKU),
		Description:      in.Description,
		BasePrice:        in.BasePrice,
		Category:         in.Category,
		AllowsNFC:        in.AllowsNFC,
		AllowsLogoUpload: in.AllowsLogoUpload,
		Active:           true,
		Images:           NormalizeImages(in.Images),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.String("product_id", p.ID),
		zap.String("sku", p.SKU),
	)
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	if !in.HasFields() {
		return nil, ErrNoFields
	}

	var images []Image
	if in.Images != nil {
		images = NormalizeImages(*in.Images)
	}

	if err := s.repo.Update(ctx, id, in, images); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) DeactivateProduct(ctx context.Context, id string) (*Product, error) {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("product deactivated", zap.String("product_id", id))
	return s.repo.GetByID(ctx, id)
}
