package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ateliemimos/store/internal/order/application"
	"github.com/ateliemimos/store/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const orderColumns = `id, customer_name, email, phone, address, product_id, quantity, total_cents,
	fulfillment_status, payment_status, payment_id, preference_id, payment_event_at, version, created_at`

// CreateWithOutbox inserts the order and its OrderPlaced event in one
// transaction, so the ledger row and the event stream cannot diverge.
func (r *Repository) CreateWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer_name, email, phone, address, product_id, quantity, total_cents, fulfillment_status, payment_status, version, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		o.ID, o.Customer.Name, o.Customer.Email, o.Customer.Phone, o.Customer.Address,
		o.ProductID, o.Quantity, o.TotalCents, o.FulfillmentStatus, o.PaymentStatus, o.Version, o.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status) VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", o.ID, eventType, payload, headers, traceparent)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) SetPreference(ctx context.Context, orderID, preferenceID string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET preference_id=$2, version=version+1 WHERE id=$1`, orderID, preferenceID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

// DeleteWithOutbox is the checkout compensation. The order row and its
// still-pending OrderPlaced event are removed in one transaction; when the
// event is already in flight or sent, the compensating event is inserted
// instead so consumers learn the order is gone. Deleting an already-deleted
// order is a no-op so the compensation can itself be retried.
func (r *Repository) DeleteWithOutbox(ctx context.Context, orderID, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	pending, err := tx.Exec(ctx, `DELETE FROM outbox WHERE aggregate_id=$1 AND type='OrderPlaced' AND status='pending'`, orderID)
	if err != nil {
		return err
	}
	if pending.RowsAffected() == 0 {
		_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status) VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
			"order", orderID, eventType, payload, headers, traceparent)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, application.ErrNotFound
	}
	return o, err
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *Repository) SetFulfillment(ctx context.Context, id string, st domain.FulfillmentStatus, expectedVersion int64) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET fulfillment_status=$2, version=version+1 WHERE id=$1 AND version=$3`,
		id, st, expectedVersion)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return application.ErrStaleOrder
	}
	return nil
}

// ApplyPaymentEvent writes one reconciliation outcome. The WHERE clause is
// the monotonic guard: an event older than the one already recorded changes
// nothing and surfaces ErrStaleEvent. The status update and its outbox row
// commit together.
func (r *Repository) ApplyPaymentEvent(ctx context.Context, orderID string, st domain.PaymentStatus, paymentID string, confirmFulfillment bool, eventAt time.Time, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE orders SET
			payment_status=$2,
			payment_id=COALESCE(NULLIF($3,''), payment_id),
			fulfillment_status=CASE WHEN $4 THEN 'confirmed' ELSE fulfillment_status END,
			payment_event_at=$5,
			version=version+1
		WHERE id=$1 AND (payment_event_at IS NULL OR payment_event_at <= $5)`,
		orderID, st, paymentID, confirmFulfillment, eventAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, orderID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return application.ErrNotFound
		}
		return application.ErrStaleEvent
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status) VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", orderID, eventType, payload, headers, traceparent)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var paymentID, preferenceID *string
	var eventAt *time.Time
	err := row.Scan(&o.ID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Address,
		&o.ProductID, &o.Quantity, &o.TotalCents, &o.FulfillmentStatus, &o.PaymentStatus,
		&paymentID, &preferenceID, &eventAt, &o.Version, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	if paymentID != nil {
		o.PaymentID = *paymentID
	}
	if preferenceID != nil {
		o.PreferenceID = *preferenceID
	}
	o.PaymentEventAt = eventAt
	return o, nil
}
