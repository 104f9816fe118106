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

var _ repository.AccountRepository = (*accountRepo)(nil)

type accountRepo struct{ pool *pgxpool.Pool }

func NewAccountRepo(pool *pgxpool.Pool) *accountRepo {
	return &accountRepo{pool: pool}
}

// AddQuota is additive on conflict: a second grant for the same user adds to
// the running total, it never overwrites it.
func (r *accountRepo) AddQuota(ctx context.Context, tx repository.Tx, userID string, quota int64, expiresAt time.Time) error {
	const q = `
INSERT INTO user_accounts (user_id, total_quota, used_quota, quota_expires_at, updated_at)
VALUES ($1, $2, 0, $3, NOW())
ON CONFLICT (user_id) DO UPDATE SET
  total_quota = user_accounts.total_quota + $2,
  quota_expires_at = GREATEST(user_accounts.quota_expires_at, $3),
  updated_at = NOW();`

	_, err := execSQL(ctx, r.pool, tx, q, userID, quota, expiresAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *accountRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserAccount, error) {
	const q = `
SELECT user_id, total_quota, used_quota, quota_expires_at, updated_at
  FROM user_accounts
 WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	a := &model.UserAccount{}
	if err := row.Scan(&a.UserID, &a.TotalQuota, &a.UsedQuota, &a.QuotaExpiresAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}
