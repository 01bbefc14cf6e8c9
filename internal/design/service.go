package design

import (
	"context"
	"errors"

	"signalcraft-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	ListDesigns(ctx context.Context, orderID string) ([]Design, error)
	GetDesign(ctx context.Context, id string) (*Design, error)
	// CreateDesign does not check version uniqueness; callers keep versions
	// monotonic.
	CreateDesign(ctx context.Context, orderID string, in CreateDesignInput) (*Design, error)
	ListReviews(ctx context.Context, designID string) ([]Review, error)
	CreateReview(ctx context.Context, designID string, in CreateReviewInput) (*Review, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListDesigns(ctx context.Context, orderID string) ([]Design, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) GetDesign(ctx context.Context, id string) (*Design, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateDesign(ctx context.Context, orderID string, in CreateDesignInput) (*Design, error) {
	d := &Design{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Version:    in.Version,
		Status:     in.Status,
		PreviewURL: in.PreviewURL,
		SourceURL:  in.SourceURL,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ListReviews(ctx context.Context, designID string) ([]Review, error) {
	if _, err := s.repo.GetByID(ctx, designID); err != nil {
		return nil, err
	}
	return s.repo.ListReviews(ctx, designID)
}

func (s *service) CreateReview(ctx context.Context, designID string, in CreateReviewInput) (*Review, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateReview"),
		zap.String("design_id", designID),
	)

	if _, err := s.repo.GetByID(ctx, designID); err != nil {
		if errors.Is(err, ErrDesignNotFound) {
			log.Warn("design not found")
		}
		return nil, err
	}

	rv := &Review{
		ID:            uuid.NewString(),
		DesignID:      designID,
		Status:        in.Status,
		Comment:       in.Comment,
		AttachmentURL: in.AttachmentURL,
	}
	if err := s.repo.CreateReviewTx(ctx, rv, NextDesignStatus(in.Status)); err != nil {
		log.Error("failed to create review", zap.Error(err))
		return nil, err
	}
	return rv, nil
}
