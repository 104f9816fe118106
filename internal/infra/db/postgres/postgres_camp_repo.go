package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
)

var _ repository.CampRepository = (*campRepo)(nil)

type campRepo struct{ pool *pgxpool.Pool }

func NewCampRepo(pool *pgxpool.Pool) *campRepo {
	return &campRepo{pool: pool}
}

// SavePurchase inserts only; camp purchases are immutable once created.
func (r *campRepo) SavePurchase(ctx context.Context, tx repository.Tx, p *model.CampPurchase) error {
	const q = `
INSERT INTO user_camp_purchases (
  id, user_id, camp_type, camp_name, purchase_price, payment_method, payment_status, transaction_id, purchased_at, expires_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.CampType, p.CampName, p.PurchasePrice, p.PaymentMethod, p.PaymentStatus, p.TransactionID, p.PurchasedAt, p.ExpiresAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *campRepo) ListPurchasesByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.CampPurchase, error) {
	const q = `
SELECT id, user_id, camp_type, camp_name, purchase_price, payment_method, payment_status, transaction_id, purchased_at, expires_at
  FROM user_camp_purchases
 WHERE user_id=$1
 ORDER BY purchased_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.CampPurchase
	for rows.Next() {
		p := &model.CampPurchase{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.CampType, &p.CampName, &p.PurchasePrice, &p.PaymentMethod, &p.PaymentStatus, &p.TransactionID, &p.PurchasedAt, &p.ExpiresAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *campRepo) FindTemplate(ctx context.Context, tx repository.Tx, campType string) (*model.CampTemplate, error) {
	const q = `SELECT id, camp_type, camp_name FROM camp_templates WHERE camp_type=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, campType)
	if err != nil {
		return nil, err
	}
	t := &model.CampTemplate{}
	if err := row.Scan(&t.ID, &t.CampType, &t.CampName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}
