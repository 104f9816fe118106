// File: internal/usecase/claim_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
)

// ClaimResult is what the claim endpoint reports back to the user.
type ClaimResult struct {
	AlreadyClaimed bool
	PackageKey     string
	PackageName    string
	Granted        []string
}

// Compile-time check
var _ GuestClaimUseCase = (*claimUC)(nil)

// GuestClaimUseCase attaches a guest-checkout order to the authenticated
// user and then runs the same post-payment path as the callback flow.
//
// Precondition failures (unknown order, unpaid, claimed by someone else)
// come back as domain sentinels and mutate nothing. The claim itself is a
// single conditional UPDATE; the database predicate, not a read-then-write,
// decides the winner between concurrent claims.
type GuestClaimUseCase interface {
	Claim(ctx context.Context, userID, orderNo string) (*ClaimResult, error)
}

type claimUC struct {
	orders   repository.OrderRepository
	benefits BenefitUseCase
	referral ReferralUseCase
	log      *zerolog.Logger
}

func NewGuestClaimUseCase(
	orders repository.OrderRepository,
	benefits BenefitUseCase,
	referral ReferralUseCase,
	logger *zerolog.Logger,
) *claimUC {
	return &claimUC{orders: orders, benefits: benefits, referral: referral, log: logger}
}

func (u *claimUC) Claim(ctx context.Context, userID, orderNo string) (*ClaimResult, error) {
	if userID == "" || orderNo == "" {
		return nil, domain.ErrInvalidArgument
	}

	o, err := u.orders.FindByOrderNo(ctx, repository.NoTX, orderNo)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPaid {
		return nil, domain.ErrOrderUnpaid
	}
	if o.UserID != nil {
		if *o.UserID == userID {
			return &ClaimResult{AlreadyClaimed: true, PackageKey: o.PackageKey, PackageName: o.PackageName}, nil
		}
		return nil, domain.ErrOrderClaimedByOther
	}

	won, err := u.orders.ClaimIfUnowned(ctx, repository.NoTX, orderNo, userID)
	if err != nil {
		return nil, err
	}
	if !won {
		// Raced with another claim. Re-read to distinguish "ours after a
		// retry" from "someone else's".
		refreshed, rerr := u.orders.FindByOrderNo(ctx, repository.NoTX, orderNo)
		if rerr == nil && refreshed.UserID != nil && *refreshed.UserID == userID {
			return &ClaimResult{AlreadyClaimed: true, PackageKey: o.PackageKey, PackageName: o.PackageName}, nil
		}
		return nil, domain.ErrOrderClaimedByOther
	}

	o.UserID = &userID
	u.log.Info().Str("order_no", orderNo).Str("user_id", userID).Msg("guest order claimed")

	granted, err := u.benefits.Grant(ctx, repository.NoTX, o)
	if err != nil {
		u.log.Error().Err(err).Str("order_no", orderNo).Msg("benefit grant failed after claim")
	}
	if err := u.referral.OnOrderBound(ctx, repository.NoTX, userID, o); err != nil {
		u.log.Error().Err(err).Str("order_no", orderNo).Msg("referral processing failed after claim")
	}

	return &ClaimResult{PackageKey: o.PackageKey, PackageName: o.PackageName, Granted: granted}, nil
}
