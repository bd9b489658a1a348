package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/packquote/packquote/internal/platform/db"
)

// Repository persists quotations and their items.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NextNumber(ctx context.Context, year int) (int, error)
	Create(ctx context.Context, q Quotation) error
	Get(ctx context.Context, id uuid.UUID) (Quotation, error)
	List(ctx context.Context, f ListFilter) ([]Quotation, int, error)
	Update(ctx context.Context, q Quotation) error
	ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListReroundCandidates(ctx context.Context, limit int) ([]uuid.UUID, error)
}

type repository struct {
	db   db.Querier
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) NextNumber(ctx context.Context, year int) (int, error) {
	var next int
	err := r.db.QueryRow(ctx, `INSERT INTO quotation_number_counters (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = quotation_number_counters.last_value + 1
		RETURNING last_value`, year).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("quotations: next number: %w", err)
	}
	return next, nil
}

func (r *repository) Create(ctx context.Context, q Quotation) error {
	_, err := r.db.Exec(ctx, `INSERT INTO quotations
			(id, quotation_number, user_id, customer_name, customer_email, customer_phone, status,
			 subtotal_amount, tax_amount, total_amount, sku_count, total_meters, loss_meters,
			 total_cost_breakdown, notes, admin_notes, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)`,
		q.ID, q.QuotationNumber, q.UserID, q.CustomerName, q.CustomerEmail, q.CustomerPhone, string(q.Status),
		q.SubtotalAmount, q.TaxAmount, q.TotalAmount, q.SKUCount, q.TotalMeters, q.LossMeters,
		nullJSON(q.TotalCostBreakdown), q.Notes, q.AdminNotes, q.ValidUntil, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("quotations: insert: %w", err)
	}
	return r.insertItems(ctx, q.ID, q.Items)
}

func (r *repository) insertItems(ctx context.Context, quotationID uuid.UUID, items []Item) error {
	for _, it := range items {
		_, err := r.db.Exec(ctx, `INSERT INTO quotation_items
				(id, quotation_id, sku_index, product_name, quantity, unit_price, total_price,
				 specifications, cost_breakdown, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))`,
			it.ID, quotationID, it.SKUIndex, it.ProductName, it.Quantity, it.UnitPrice, it.TotalPrice,
			specJSON(it.Specifications), nullJSON(it.CostBreakdown), nullTime(it.CreatedAt))
		if err != nil {
			return fmt.Errorf("quotations: insert item %d: %w", it.SKUIndex, err)
		}
	}
	return nil
}

const quotationColumns = `q.id, q.quotation_number, q.user_id, q.customer_name, q.customer_email, q.customer_phone,
	q.status, q.subtotal_amount, q.tax_amount, q.total_amount, q.sku_count, q.total_meters, q.loss_meters,
	q.total_cost_breakdown, q.notes, q.admin_notes, q.valid_until, q.created_at, q.updated_at,
	q.approved_at, q.rejected_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Quotation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations q WHERE q.id = $1`, id)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, ErrNotFound
		}
		return Quotation{}, fmt.Errorf("quotations: get %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `SELECT id, quotation_id, sku_index, product_name, quantity, unit_price,
			total_price, specifications, cost_breakdown, created_at
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY sku_index`, id)
	if err != nil {
		return Quotation{}, fmt.Errorf("quotations: get items %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		var spec, cost []byte
		if err := rows.Scan(&it.ID, &it.QuotationID, &it.SKUIndex, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &spec, &cost, &it.CreatedAt); err != nil {
			return Quotation{}, fmt.Errorf("quotations: scan item: %w", err)
		}
		it.Specifications = spec
		if len(cost) > 0 {
			it.CostBreakdown = cost
		}
		q.Items = append(q.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Quotation{}, fmt.Errorf("quotations: items rows: %w", err)
	}
	return q, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Quotation, int, error) {
	f.normalize()

	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Status != "" {
		add("q.status = $%d", string(f.Status))
	}
	if f.UserID != "" {
		add("q.user_id = $%d", f.UserID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(q.quotation_number ILIKE $%d OR q.customer_name ILIKE $%d OR q.customer_email ILIKE $%d)", n, n, n))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotations q`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("quotations: count: %w", err)
	}

	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM quotations q%s ORDER BY %s %s, q.id LIMIT $%d OFFSET $%d`,
		quotationColumns, clause, sortColumns[f.Sort], direction, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("quotations: list: %w", err)
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("quotations: scan: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("quotations: rows: %w", err)
	}
	return out, total, nil
}

func (r *repository) Update(ctx context.Context, q Quotation) error {
	tag, err := r.db.Exec(ctx, `UPDATE quotations SET
			customer_name = $2, customer_email = $3, customer_phone = $4, status = $5,
			subtotal_amount = $6, tax_amount = $7, total_amount = $8, sku_count = $9,
			total_meters = $10, loss_meters = $11, total_cost_breakdown = $12,
			notes = $13, admin_notes = $14, valid_until = $15,
			approved_at = $16, rejected_at = $17, updated_at = NOW()
		WHERE id = $1`,
		q.ID, q.CustomerName, q.CustomerEmail, q.CustomerPhone, string(q.Status),
		q.SubtotalAmount, q.TaxAmount, q.TotalAmount, q.SKUCount,
		q.TotalMeters, q.LossMeters, nullJSON(q.TotalCostBreakdown),
		q.Notes, q.AdminNotes, q.ValidUntil, q.ApprovedAt, q.RejectedAt)
	if err != nil {
		return fmt.Errorf("quotations: update %s: %w", q.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []Item) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, quotationID); err != nil {
		return fmt.Errorf("quotations: delete items %s: %w", quotationID, err)
	}
	return r.insertItems(ctx, quotationID, items)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("quotations: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReroundCandidates returns quotations whose stored amounts break the
// item rounding or summing rules, oldest first.
func (r *repository) ListReroundCandidates(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT q.id FROM quotations q
		WHERE q.total_amount <> q.subtotal_amount + q.tax_amount
		   OR q.subtotal_amount <> COALESCE(
				(SELECT SUM(i.total_price) FROM quotation_items i WHERE i.quotation_id = q.id), 0)
		   OR EXISTS (
				SELECT 1 FROM quotation_items i
				WHERE i.quotation_id = q.id
				  AND i.total_price <> CEIL(i.unit_price * i.quantity / 100) * 100)
		ORDER BY q.created_at, q.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("quotations: reround candidates: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("quotations: scan candidate: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	var status string
	var breakdown []byte
	err := row.Scan(&q.ID, &q.QuotationNumber, &q.UserID, &q.CustomerName, &q.CustomerEmail, &q.CustomerPhone,
		&status, &q.SubtotalAmount, &q.TaxAmount, &q.TotalAmount, &q.SKUCount, &q.TotalMeters, &q.LossMeters,
		&breakdown, &q.Notes, &q.AdminNotes, &q.ValidUntil, &q.CreatedAt, &q.UpdatedAt,
		&q.ApprovedAt, &q.RejectedAt)
	if err != nil {
		return Quotation{}, err
	}
	q.Status = Status(status)
	if len(breakdown) > 0 {
		q.TotalCostBreakdown = breakdown
	}
	return q, nil
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func specJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
