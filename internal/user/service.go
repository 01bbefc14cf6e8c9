package user

import (
	"context"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	// ResolveOwner returns the user id that scopes the caller's orders. ok is
	// false when the caller is anonymous or carries no email.
	ResolveOwner(ctx context.Context, caller *auth.Caller) (id string, ok bool, err error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ResolveOwner(ctx context.Context, caller *auth.Caller) (string, bool, error) {
	if caller == nil || caller.Email == "" {
		return "", false, nil
	}

	var name *string
	if caller.Username != "" {
		name = &caller.Username
	}

	id, err := s.repo.UpsertByEmail(ctx, caller.Email, name)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to resolve owner",
			zap.String("layer", "service"),
			zap.String("method", "ResolveOwner"),
			zap.Error(err),
		)
		return "", false, err
	}

	return id, true, nil
}
