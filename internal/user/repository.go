package user

import (
	"context"
	"database/sql"
	"fmt"

	"signalcraft-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	UpsertByEmail(ctx context.Context, email string, name *string) (string, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertByEmail(ctx context.Context, email string, name *string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpsertByEmail"),
	)

	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = COALESCE(EXCLUDED.name, users.name)
		RETURNING id
	`, email, name).Scan(&id)
	if err != nil {
		log.Error("db: failed to upsert user", zap.String("email", email), zap.Error(err))
		return "", fmt.Errorf("upsert user: %w", err)
	}

	return id, nil
}
