package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("catalog entry not found")
)

type ProductQuery struct {
	CategoryID string
	Q          string
	ActiveOnly bool
}

// CategoryUpdate and ProductUpdate carry partial admin edits; nil and empty
// fields leave the stored value unchanged.
type CategoryUpdate struct {
	Name        string
	Description *string
	IsActive    *bool
}

type ProductUpdate struct {
	Name        string
	Description string
	BasePrice   *decimal.Decimal
	IsActive    *bool
	CategoryID  string
}

type Repository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, id string, upd CategoryUpdate) error

	ListProducts(ctx context.Context, q ProductQuery) ([]Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]Product, error)
	CreateProduct(ctx context.Context, p *Product, variants []Variant) error
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate, variants []Variant) error
	DeactivateProduct(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ListCategories(ctx context.Context, activeOnly bool) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM product_categories
		WHERE ($1 = false OR is_active)
		ORDER BY name ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO product_categories (id, name, description, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
	`, c.ID, c.Name, c.Description, c.IsActive)
	return err
}

func (r *PGRepo) UpdateCategory(ctx context.Context, id string, upd CategoryUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE product_categories
		SET name = COALESCE(NULLIF($2,''), name),
		    description = COALESCE($3, description),
		    is_active = COALESCE($4, is_active),
		    updated_at = NOW()
		WHERE id = $1
	`, id, upd.Name, upd.Description, upd.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	search := escapeLike(strings.TrimSpace(q.Q))

	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.base_price::text, p.is_active, p.category_id, p.created_at, p.updated_at,
		       c.id, c.name, c.description, c.is_active, c.created_at, c.updated_at
		FROM products p
		JOIN product_categories c ON c.id = p.category_id
		WHERE ($1 = false OR p.is_active)
		  AND ($2 = '' OR p.category_id::text = $2)
		  AND ($3 = '' OR p.name ILIKE '%'||$3||'%')
		ORDER BY p.name ASC
	`, q.ActiveOnly, q.CategoryID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var (
			p     Product
			c     Category
			price string
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &price, &p.IsActive, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
			&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.BasePrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		p.Category = &c
		p.Variants = []Variant{}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally. Postgres treats backslash as the escape character by default.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PGRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, base_price::text, is_active, category_id, created_at, updated_at
		FROM products WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var (
			p     Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.IsActive, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.BasePrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		p.Variants = []Variant{}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) attachVariants(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	byID := make(map[string]*Product, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
		byID[products[i].ID] = &products[i]
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, name, sku, price::text, stock, created_at, updated_at
		FROM product_variants WHERE product_id = ANY($1)
		ORDER BY name ASC
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v     Variant
			price *string
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.SKU, &price, &v.Stock, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return err
		}
		if price != nil {
			d, err := decimal.NewFromString(*price)
			if err != nil {
				return err
			}
			v.Price = &d
		}
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return rows.Err()
}

func (r *PGRepo) CreateProduct(ctx context.Context, p *Product, variants []Variant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO products (id, name, description, base_price, is_active, category_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
	`, p.ID, p.Name, p.Description, p.BasePrice, p.IsActive, p.CategoryID); err != nil {
		return err
	}
	if err := upsertVariants(ctx, tx, p.ID, variants); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateProduct writes the product row and the full variant batch in one
// transaction, per the admin panel's save-all editing model. Variants left
// out of the batch are deleted, except those referenced by order items.
// A nil batch leaves the stored variants untouched.
func (r *PGRepo) UpdateProduct(ctx context.Context, id string, upd ProductUpdate, variants []Variant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET name = COALESCE(NULLIF($2,''), name),
		    description = COALESCE(NULLIF($3,''), description),
		    base_price = COALESCE($4, base_price),
		    is_active = COALESCE($5, is_active),
		    category_id = COALESCE(NULLIF($6,'')::uuid, category_id),
		    updated_at = NOW()
		WHERE id = $1
	`, id, upd.Name, upd.Description, upd.BasePrice, upd.IsActive, upd.CategoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if variants != nil {
		if err := upsertVariants(ctx, tx, id, variants); err != nil {
			return err
		}
		if err := deleteAbsentVariants(ctx, tx, id, variants); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func upsertVariants(ctx context.Context, tx pgx.Tx, productID string, variants []Variant) error {
	for i := range variants {
		v := &variants[i]
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_variants (id, product_id, name, sku, price, stock, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    sku = EXCLUDED.sku,
			    price = EXCLUDED.price,
			    stock = EXCLUDED.stock,
			    updated_at = NOW()
		`, v.ID, productID, v.Name, v.SKU, v.Price, v.Stock); err != nil {
			return err
		}
	}
	return nil
}

// deleteAbsentVariants removes variants missing from the submitted batch.
// Variants already snapshotted on an order item are kept so historical
// orders stay resolvable.
func deleteAbsentVariants(ctx context.Context, tx pgx.Tx, productID string, variants []Variant) error {
	keep := make([]string, 0, len(variants))
	for i := range variants {
		keep = append(keep, variants[i].ID)
	}
	_, err := tx.Exec(ctx, `
		DELETE FROM product_variants v
		WHERE v.product_id = $1
		  AND NOT (v.id = ANY($2))
		  AND NOT EXISTS (SELECT 1 FROM order_items i WHERE i.variant_id = v.id)
	`, productID, keep)
	return err
}

func (r *PGRepo) DeactivateProduct(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
