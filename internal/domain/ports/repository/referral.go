package repository

import (
	"context"
	"time"

	"wellness-order-service/internal/domain/model"
)

type ReferralRepository interface {
	// FindLevel1ByReferredUser returns the direct (level-1) referral record
	// pointing at a user, or domain.ErrNotFound.
	FindLevel1ByReferredUser(ctx context.Context, tx Tx, userID string) (*model.Referral, error)
	UpdateConversion(ctx context.Context, tx Tx, id string, status model.ConversionStatus, convertedAt time.Time) error
}

type PartnerRepository interface {
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.Partner, error)

	// ConsumePrepurchase decrements one prepurchased slot, guarded at the
	// database: UPDATE ... WHERE id=$1 AND prepurchase_count > 0.
	// Returns false when no slot was left.
	ConsumePrepurchase(ctx context.Context, tx Tx, partnerID string) (bool, error)
}
