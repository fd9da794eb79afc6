package order

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
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, f Filter) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create writes the order header and all items in one transaction; a failed
// item insert rolls back the whole order. The stored timestamps are written
// back to o.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, status, payment_method, payment_status, total_amount,
		                    pickup_location, pickup_schedule, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.UserID, o.Status, o.PaymentMethod, o.PaymentStatus, o.TotalAmount,
		o.PickupLocation, o.PickupSchedule).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	for i := range items {
		it := &items[i]
		it.OrderID = o.ID
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, variant_id, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, it.ID, o.ID, it.ProductID, it.VariantID, it.Quantity, it.UnitPrice, it.LineTotal); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

const orderColumns = `
	o.id, o.user_id, o.status, o.payment_method, o.payment_status, o.total_amount::text,
	o.pickup_location, o.pickup_schedule, o.created_at, o.updated_at, u.full_name, u.email
`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentMethod, &o.PaymentStatus, &total,
		&o.PickupLocation, &o.PickupSchedule, &o.CreatedAt, &o.UpdatedAt,
		&o.CustomerName, &o.CustomerEmail,
	)
	if err != nil {
		return nil, err
	}
	o.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.Items = []Item{}
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(ctx, rows)
}

// List applies the admin filter set and returns the page of orders newest
// first plus the total matching count.
func (r *PGRepo) List(ctx context.Context, f Filter) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := `
		($1 = '' OR o.status = $1)
		AND ($2 = '' OR o.payment_method = $2)
		AND ($3 = '' OR o.id::text ILIKE '%'||$3||'%'
		             OR u.email ILIKE '%'||$3||'%'
		             OR u.full_name ILIKE '%'||$3||'%')
		AND ($4::timestamptz IS NULL OR o.created_at >= $4)
		AND ($5::timestamptz IS NULL OR
		     CASE WHEN $6 THEN o.created_at < $5 ELSE o.created_at <= $5 END)
	`
	args := []any{f.Status, f.PaymentMethod, escapeLike(f.Search), f.Start, f.End, f.EndExclusive}

	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id
		WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE `+where+`
		ORDER BY o.created_at DESC
		LIMIT $7 OFFSET $8
	`, append(args, f.PerPage, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := r.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally. Postgres treats backslash as the escape character by default.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PGRepo) collect(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*Order, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.variant_id, i.quantity,
		       i.unit_price::text, i.line_total::text, p.name, v.name
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN product_variants v ON v.id = i.variant_id
		WHERE i.order_id = ANY($1)
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it         Item
			unit, line string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.Quantity,
			&unit, &line, &it.ProductName, &it.VariantName); err != nil {
			return err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return err
		}
		if it.LineTotal, err = decimal.NewFromString(line); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *PGRepo) attachPayments(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, provider, status, amount::text, created_at
		FROM payments WHERE order_id = ANY($1)
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p      Payment
			amount string
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Provider, &p.Status, &amount, &p.CreatedAt); err != nil {
			return err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return err
		}
		if o, ok := byID[p.OrderID]; ok {
			cp := p
			o.Payment = &cp
		}
	}
	return rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
