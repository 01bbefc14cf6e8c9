package design

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"signalcraft-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListByOrder(ctx context.Context, orderID string) ([]Design, error)
	GetByID(ctx context.Context, id string) (*Design, error)
	Create(ctx context.Context, d *Design) error
	ListReviews(ctx context.Context, designID string) ([]Review, error)
	// CreateReviewTx inserts the review and moves the design to next in a
	// single transaction.
	CreateReviewTx(ctx context.Context, r *Review, next Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func scanDesign(s interface{ Scan(...any) error }) (*Design, error) {
	var (
		d      Design
		status string
	)
	if err := s.Scan(&d.ID, &d.OrderID, &d.Version, &status, &d.PreviewURL, &d.SourceURL, &d.CreatedAt); err != nil {
		return nil, err
	}
	st, err := StatusFromDB(status)
	if err != nil {
		return nil, err
	}
	d.Status = st
	return &d, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]Design, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByOrder"),
		zap.String("order_id", orderID),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, version, status, preview_url, source_url, created_at
		FROM designs
		WHERE order_id = $1
		ORDER BY version DESC, created_at DESC
	`, orderID)
	if err != nil {
		log.Error("failed to query designs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	designs := []Design{}
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			log.Error("failed to scan design row", zap.Error(err))
			return nil, err
		}
		designs = append(designs, *d)
	}
	return designs, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Design, error) {
	d, err := scanDesign(r.db.QueryRowContext(ctx, `
		SELECT id, order_id, version, status, preview_url, source_url, created_at
		FROM designs WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get design: %w", err)
	}
	return d, nil
}

func (r *repository) Create(ctx context.Context, d *Design) error {
	status, err := StatusToDB(d.Status)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO designs (id, order_id, version, status, preview_url, source_url)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, d.ID, d.OrderID, d.Version, status, d.PreviewURL, d.SourceURL).Scan(&d.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert design",
			zap.String("layer", "repository"),
			zap.String("order_id", d.OrderID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) ListReviews(ctx context.Context, designID string) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, design_id, status, comment, attachment_url, created_at
		FROM design_reviews
		WHERE design_id = $1
		ORDER BY created_at DESC
	`, designID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var (
			rv     Review
			status string
		)
		if err := rows.Scan(&rv.ID, &rv.DesignID, &status, &rv.Comment, &rv.AttachmentURL, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if rv.Status, err = ReviewFromDB(status); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *repository) CreateReviewTx(ctx context.Context, rv *Review, next Status) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateReviewTx"),
		zap.String("design_id", rv.DesignID),
	)

	reviewStatus, err := ReviewToDB(rv.Status)
	if err != nil {
		return err
	}
	designStatus, err := StatusToDB(next)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin tx", zap.Error(err))
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO design_reviews (id, design_id, status, comment, attachment_url)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, rv.ID, rv.DesignID, reviewStatus, rv.Comment, rv.AttachmentURL).Scan(&rv.CreatedAt)
	if err != nil {
		log.Error("failed to insert review", zap.Error(err))
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE designs SET status = $1, updated_at = NOW() WHERE id = $2`,
		designStatus, rv.DesignID,
	)
	if err != nil {
		log.Error("failed to update design status", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDesignNotFound
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit review", zap.Error(err))
		return err
	}
	committed = true

	log.Info("review committed", zap.String("design_status", string(next)))
	return nil
}
