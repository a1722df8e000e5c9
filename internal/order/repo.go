package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// GetByOrderID and GetByClientReference return (nil, nil) when no
	// order matches, so callers can branch on absence without sentinel
	// comparisons (reconciliation's find-then-update upsert relies on it).
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	GetByClientReference(ctx context.Context, ref string) (*Order, error)
	ListByEmail(ctx context.Context, email string) ([]Order, error)
	ListByStatus(ctx context.Context, status string) ([]Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*Order, error)
	UpdateStatusByOrderID(ctx context.Context, orderID, status string) (*Order, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderColumns = `
	id, order_id, COALESCE(client_reference_id,''), products,
	amount::text, shipping_fee::text,
	customer_name, customer_phone, country, wilayat, COALESCE(description,''),
	email, status, currency, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var products []byte
	err := row.Scan(&o.ID, &o.OrderID, &o.ClientReferenceID, &products,
		&o.Amount, &o.ShippingFee,
		&o.CustomerName, &o.CustomerPhone, &o.Country, &o.Wilayat, &o.Description,
		&o.Email, &o.Status, &o.Currency, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(products, &o.Products); err != nil {
		return nil, fmt.Errorf("decode order products: %w", err)
	}
	return &o, nil
}

func (r *PGRepo) Insert(ctx context.Context, o *Order) error {
	if !ValidStatus(o.Status) {
		return ErrInvalidStatus
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	products, err := json.Marshal(o.Products)
	if err != nil {
		return fmt.Errorf("encode order products: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO orders (id, order_id, client_reference_id, products, amount, shipping_fee,
		                    customer_name, customer_phone, country, wilayat, description,
		                    email, status, currency, created_at, updated_at)
		VALUES ($1,$2,NULLIF($3,''),$4,$5::numeric,$6::numeric,$7,$8,$9,$10,NULLIF($11,''),$12,$13,$14,NOW(),NOW())
	`, o.ID, o.OrderID, o.ClientReferenceID, products, o.Amount, o.ShippingFee,
		o.CustomerName, o.CustomerPhone, o.Country, o.Wilayat, o.Description,
		o.Email, o.Status, o.Currency)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *PGRepo) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) GetByClientReference(ctx context.Context, ref string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE client_reference_id=$1`, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE email=$1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *PGRepo) ListByStatus(ctx context.Context, status string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	return r.updateStatus(ctx, "id", id, status)
}

func (r *PGRepo) UpdateStatusByOrderID(ctx context.Context, orderID, status string) (*Order, error) {
	return r.updateStatus(ctx, "order_id", orderID, status)
}

func (r *PGRepo) updateStatus(ctx context.Context, keyColumn, key, status string) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE `+keyColumn+` = $1
		RETURNING `+orderColumns,
		key, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
