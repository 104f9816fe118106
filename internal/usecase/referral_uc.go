// File: internal/usecase/referral_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/adapter"
	"wellness-order-service/internal/domain/ports/repository"
)

// Compile-time check
var _ ReferralUseCase = (*referralUC)(nil)

// ReferralUseCase fires the affiliate side effects after an order is bound
// to a user. Everything here is soft-fail: a broken referral record or an
// unreachable commission service never surfaces to the purchaser.
type ReferralUseCase interface {
	// OnOrderBound marks the level-1 referral conversion for the buying
	// user (if any) and invokes commission calculation. The returned error
	// is always a ProvisioningWarning; callers log it and move on.
	OnOrderBound(ctx context.Context, tx repository.Tx, userID string, o *model.Order) error
}

type referralUC struct {
	referrals  repository.ReferralRepository
	commission adapter.CommissionInvoker
	log        *zerolog.Logger
}

func NewReferralUseCase(referrals repository.ReferralRepository, commission adapter.CommissionInvoker, logger *zerolog.Logger) *referralUC {
	return &referralUC{referrals: referrals, commission: commission, log: logger}
}

func (u *referralUC) OnOrderBound(ctx context.Context, tx repository.Tx, userID string, o *model.Order) error {
	ref, err := u.referrals.FindLevel1ByReferredUser(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // not a referred user
		}
		return domain.Provisioning("referral lookup", err)
	}

	status := model.ConversionPurchased365
	if o.PackageKey == model.PartnerPackageKey {
		status = model.ConversionBecamePartner
	}
	if err := u.referrals.UpdateConversion(ctx, tx, ref.ID, status, time.Now()); err != nil {
		return domain.Provisioning("referral conversion update", err)
	}

	req := adapter.CommissionRequest{
		OrderID:     o.ID,
		UserID:      userID,
		OrderAmount: o.Amount,
		OrderType:   o.PackageKey,
	}
	if err := u.commission.Invoke(ctx, req); err != nil {
		return domain.Provisioning("commission invoke", err)
	}

	u.log.Info().Str("referral_id", ref.ID).Str("user_id", userID).Str("status", string(status)).Msg("referral conversion recorded")
	return nil
}
