package contact

import (
	"context"
	"database/sql"
	"errors"

	"signalcraft-be/internal/logger"

	"go.uber.org/zap"
)

var ErrMessageNotFound = errors.New("message not found")

type Repository interface {
	Create(ctx context.Context, m *Message) error
	List(ctx context.Context) ([]Message, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Message, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, m.ID, m.Name, m.Email, m.Subject, m.Message, string(m.Status)).Scan(&m.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert contact message",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) List(ctx context.Context) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, subject, message, status, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (*Message, error) {
	var m Message
	err := r.db.QueryRowContext(ctx, `
		UPDATE contact_messages SET status = $1
		WHERE id = $2
		RETURNING id, name, email, subject, message, status, created_at
	`, string(status), id).Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
