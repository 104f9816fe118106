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

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

// Upsert keys on user_id, so a repeat purchase replaces the entitlement
// window instead of creating a second row.
func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, package_id, subscription_type, status, combo_name, combo_amount, start_date, end_date, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
ON CONFLICT (user_id) DO UPDATE SET
  package_id=$3, subscription_type=$4, status=$5, combo_name=$6, combo_amount=$7, start_date=$8, end_date=$9, updated_at=NOW();`

	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.PackageID, s.SubscriptionType, s.Status, s.ComboName, s.ComboAmount, s.StartDate, s.EndDate)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const q = `
SELECT id, user_id, package_id, subscription_type, status, combo_name, combo_amount, start_date, end_date, created_at, updated_at
  FROM subscriptions
 WHERE user_id=$1
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.PackageID, &s.SubscriptionType, &s.Status, &s.ComboName, &s.ComboAmount, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}
