package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, order_no, user_id, package_key, package_name, amount, pay_type, status, trade_no, paid_at, created_at, updated_at`

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (
  id, order_no, user_id, package_key, package_name, amount, pay_type, status, trade_no, paid_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  user_id=$3, package_key=$4, package_name=$5, amount=$6, pay_type=$7, status=$8, trade_no=$9, paid_at=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.OrderNo, o.UserID, o.PackageKey, o.PackageName, o.Amount, o.PayType, o.Status, o.TradeNo, o.PaidAt, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) FindByOrderNo(ctx context.Context, tx repository.Tx, orderNo string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_no=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, orderNo)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

// MarkPaidIfPending performs the status transition as a compare-and-swap so
// concurrent provider retries cannot double-apply it.
func (r *orderRepo) MarkPaidIfPending(ctx context.Context, tx repository.Tx, orderNo string, tradeNo string, paidAt time.Time) (bool, error) {
	const q = `
UPDATE orders
   SET status = 'paid',
       trade_no = $2,
       paid_at = $3,
       updated_at = NOW()
 WHERE order_no = $1
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderNo, tradeNo, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

// ClaimIfUnowned binds a guest order to a user. The user_id IS NULL predicate
// is the arbiter between concurrent claims, not an application-level check.
func (r *orderRepo) ClaimIfUnowned(ctx context.Context, tx repository.Tx, orderNo string, userID string) (bool, error) {
	const q = `
UPDATE orders
   SET user_id = $2,
       updated_at = NOW()
 WHERE order_no = $1
   AND user_id IS NULL;`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderNo, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *orderRepo) ListPaidMissingSubscription(ctx context.Context, tx repository.Tx, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT ` + orderColumns + `
  FROM orders o
 WHERE o.status = 'paid'
   AND o.user_id IS NOT NULL
   AND o.package_key NOT LIKE 'camp-%'
   AND NOT EXISTS (SELECT 1 FROM subscriptions s WHERE s.user_id = o.user_id)
 ORDER BY o.paid_at ASC
 LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	if err := row.Scan(&o.ID, &o.OrderNo, &o.UserID, &o.PackageKey, &o.PackageName, &o.Amount, &o.PayType, &o.Status, &o.TradeNo, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return o, nil
}
