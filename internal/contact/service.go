package contact

import (
	"context"
	"strings"

	"signalcraft-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateMessage(ctx context.Context, in CreateInput) (*Message, error)
	ListMessages(ctx context.Context) ([]Message, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Message, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateMessage(ctx context.Context, in CreateInput) (*Message, error) {
	m := &Message{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Subject: in.Subject,
		Message: in.Message,
		Status:  StatusOpen,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("contact message received", zap.String("message_id", m.ID))
	return m, nil
}

func (s *service) ListMessages(ctx context.Context) ([]Message, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Message, error) {
	return s.repo.UpdateStatus(ctx, id, status)
}
