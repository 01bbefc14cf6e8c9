package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"signalcraft-be/internal/db"
	"signalcraft-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const skuConstraint = "products_sku_key"

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, in UpdateInput, images []Image) error
	Deactivate(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, title, sku, description, base_price, category,
	allows_nfc, allows_logo_upload, active, created_at`

func scanProduct(s interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := s.Scan(&p.ID, &p.Title, &p.SKU, &p.Description, &p.BasePrice, &p.Category,
		&p.AllowsNFC, &p.AllowsLogoUpload, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Images = []Image{}
	return &p, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
		zap.Bool("active_only", activeOnly),
	)

	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	ids := []string{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return products, nil
	}

	images, err := r.loadImages(ctx, ids)
	if err != nil {
		log.Error("failed to load images", zap.Error(err))
		return nil, err
	}
	for i := range products {
		if imgs, ok := images[products[i].ID]; ok {
			products[i].Images = imgs
		}
	}
	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	images, err := r.loadImages(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if imgs, ok := images[id]; ok {
		p.Images = imgs
	}
	return p, nil
}

func (r *repository) loadImages(ctx context.Context, productIDs []string) (map[string][]Image, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, url, alt, sort_order, is_main
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY sort_order, id
	`, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]Image{}
	for rows.Next() {
		var (
			img       Image
			productID string
		)
		if err := rows.Scan(&img.ID, &productID, &img.URL, &img.Alt, &img.SortOrder, &img.IsMain); err != nil {
			return nil, err
		}
		out[productID] = append(out[productID], img)
	}
	return out, rows.Err()
}

func insertImages(ctx context.Context, tx *sql.Tx, productID string, images []Image) error {
	for _, img := range images {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (id, product_id, url, alt, sort_order, is_main)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, img.ID, productID, img.URL, img.Alt, img.SortOrder, img.IsMain)
		if err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}
	return nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
		zap.String("sku", p.SKU),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (
			id, title, sku, description, base_price, category,
			allows_nfc, allows_logo_upload, active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`, p.ID, p.Title, p.SKU, p.Description, p.BasePrice, p.Category,
		p.AllowsNFC, p.AllowsLogoUpload, p.Active,
	).Scan(&p.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, skuConstraint) {
			log.Warn("duplicate sku")
			return ErrDuplicateSKU
		}
		log.Error("failed to insert product", zap.Error(err))
		return err
	}

	if err := insertImages(ctx, tx, p.ID, p.Images); err != nil {
		log.Error("failed to insert images", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update applies the scalar fields and, when in.Images is set, swaps the
// image rows for images in the same transaction.
func (r *repository) Update(ctx context.Context, id string, in UpdateInput, images []Image) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", id),
	)

	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.Title != nil {
		set("title", *in.Title)
	}
	if in.SKU != nil {
		set("sku", *in.SKU)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.BasePrice != nil {
		set("base_price", *in.BasePrice)
	}
	if in.Category != nil {
		set("category", *in.Category)
	}
	if in.AllowsNFC != nil {
		set("allows_nfc", *in.AllowsNFC)
	}
	if in.AllowsLogoUpload != nil {
		set("allows_logo_upload", *in.AllowsLogoUpload)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err, skuConstraint) {
			return ErrDuplicateSKU
		}
		log.Error("failed to update product", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}

	if in.Images != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
			log.Error("failed to clear images", zap.Error(err))
			return err
		}
		if err := insertImages(ctx, tx, id, images); err != nil {
			log.Error("failed to insert images", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
