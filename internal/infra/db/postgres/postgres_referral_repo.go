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

var (
	_ repository.ReferralRepository = (*referralRepo)(nil)
	_ repository.PartnerRepository  = (*partnerRepo)(nil)
)

type referralRepo struct{ pool *pgxpool.Pool }

func NewReferralRepo(pool *pgxpool.Pool) *referralRepo {
	return &referralRepo{pool: pool}
}

func (r *referralRepo) FindLevel1ByReferredUser(ctx context.Context, tx repository.Tx, userID string) (*model.Referral, error) {
	const q = `
SELECT id, partner_id, referred_user_id, level, conversion_status, converted_at, created_at
  FROM partner_referrals
 WHERE referred_user_id=$1 AND level=1
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	ref := &model.Referral{}
	if err := row.Scan(&ref.ID, &ref.PartnerID, &ref.ReferredUserID, &ref.Level, &ref.ConversionStatus, &ref.ConvertedAt, &ref.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return ref, nil
}

func (r *referralRepo) UpdateConversion(ctx context.Context, tx repository.Tx, id string, status model.ConversionStatus, convertedAt time.Time) error {
	const q = `UPDATE partner_referrals SET conversion_status=$2, converted_at=$3 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status, convertedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

type partnerRepo struct{ pool *pgxpool.Pool }

func NewPartnerRepo(pool *pgxpool.Pool) *partnerRepo {
	return &partnerRepo{pool: pool}
}

func (r *partnerRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Partner, error) {
	const q = `SELECT id, user_id, prepurchase_count, created_at FROM partners WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	p := &model.Partner{}
	if err := row.Scan(&p.ID, &p.UserID, &p.PrepurchaseCount, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPartnerNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

// ConsumePrepurchase decrements under a database-side guard; two concurrent
// redeems of the last slot cannot both succeed.
func (r *partnerRepo) ConsumePrepurchase(ctx context.Context, tx repository.Tx, partnerID string) (bool, error) {
	const q = `
UPDATE partners
   SET prepurchase_count = prepurchase_count - 1
 WHERE id = $1
   AND prepurchase_count > 0;`

	cmd, err := execSQL(ctx, r.pool, tx, q, partnerID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}
