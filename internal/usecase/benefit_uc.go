// File: internal/usecase/benefit_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
	"wellness-order-service/internal/infra/metrics"
)

// Compile-time check
var _ BenefitUseCase = (*benefitUC)(nil)

// BenefitUseCase provisions the entitlement a paid order stands for.
//
// Every grant step is best-effort: a failing quota or subscription write is
// logged and wrapped as a ProvisioningWarning, never returned as a hard
// error, because the order row has already committed and the provider must
// not retry the payment over it.
type BenefitUseCase interface {
	// Grant provisions everything the order's package entails and returns
	// the names of the items actually granted. The order must be paid and
	// bound to a user.
	Grant(ctx context.Context, tx repository.Tx, o *model.Order) ([]string, error)

	// RepairSubscription recreates a missing subscription row for a paid
	// non-camp order (the self-healing path on duplicate callbacks and in
	// the background sweep). Quota is never touched here, so repeated
	// repairs cannot double-grant. Returns true when a row was written.
	RepairSubscription(ctx context.Context, tx repository.Tx, o *model.Order) (bool, error)
}

type benefitUC struct {
	packages repository.PackageRepository
	accounts repository.AccountRepository
	subs     repository.SubscriptionRepository
	camps    repository.CampRepository
	log      *zerolog.Logger
}

func NewBenefitUseCase(
	packages repository.PackageRepository,
	accounts repository.AccountRepository,
	subs repository.SubscriptionRepository,
	camps repository.CampRepository,
	logger *zerolog.Logger,
) *benefitUC {
	return &benefitUC{packages: packages, accounts: accounts, subs: subs, camps: camps, log: logger}
}

func (u *benefitUC) Grant(ctx context.Context, tx repository.Tx, o *model.Order) ([]string, error) {
	if o == nil || o.UserID == nil || *o.UserID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if o.Status != model.OrderStatusPaid {
		return nil, domain.ErrOrderUnpaid
	}

	if o.IsCampPackage() {
		return u.grantCamp(ctx, tx, o)
	}
	return u.grantStandard(ctx, tx, o)
}

// grantCamp records the immutable camp purchase. No quota or subscription
// is touched for camp packages.
func (u *benefitUC) grantCamp(ctx context.Context, tx repository.Tx, o *model.Order) ([]string, error) {
	campType := o.CampType()
	campName := o.PackageName
	if tpl, err := u.camps.FindTemplate(ctx, tx, campType); err == nil && tpl.CampName != "" {
		campName = tpl.CampName
	}

	now := time.Now()
	purchasedAt := now
	if o.PaidAt != nil {
		purchasedAt = *o.PaidAt
	}
	p := &model.CampPurchase{
		ID:            uuid.NewString(),
		UserID:        *o.UserID,
		CampType:      campType,
		CampName:      campName,
		PurchasePrice: o.Amount,
		PaymentMethod: o.PayType,
		PaymentStatus: "completed",
		TransactionID: o.TradeNo,
		PurchasedAt:   purchasedAt,
		ExpiresAt:     nil,
	}
	if err := u.camps.SavePurchase(ctx, tx, p); err != nil {
		warn := domain.Provisioning("camp purchase", err)
		u.log.Error().Err(warn).Str("order_no", o.OrderNo).Str("camp_type", campType).Msg("camp purchase grant failed")
		metrics.IncGrant("camp", "error")
		return nil, nil
	}
	metrics.IncGrant("camp", "ok")
	u.log.Info().Str("order_no", o.OrderNo).Str("camp_type", campType).Msg("camp purchase recorded")
	return []string{"camp:" + campType}, nil
}

func (u *benefitUC) grantStandard(ctx context.Context, tx repository.Tx, o *model.Order) ([]string, error) {
	pkg, err := u.packages.FindByKey(ctx, tx, o.PackageKey)
	if err != nil {
		warn := domain.Provisioning("package lookup", err)
		u.log.Error().Err(warn).Str("order_no", o.OrderNo).Str("package_key", o.PackageKey).Msg("package resolution failed; nothing granted")
		return nil, nil
	}

	var granted []string
	start := time.Now()
	if o.PaidAt != nil {
		start = *o.PaidAt
	}
	end := start.Add(pkg.Duration())

	// Quota is additive: a repeat purchase tops up, never overwrites.
	if pkg.AIQuota > 0 {
		if err := u.accounts.AddQuota(ctx, tx, *o.UserID, pkg.AIQuota, end); err != nil {
			warn := domain.Provisioning("quota grant", err)
			u.log.Error().Err(warn).Str("order_no", o.OrderNo).Msg("quota grant failed")
			metrics.IncGrant("quota", "error")
		} else {
			granted = append(granted, "quota")
			metrics.IncGrant("quota", "ok")
		}
	}

	sub := &model.Subscription{
		ID:               uuid.NewString(),
		UserID:           *o.UserID,
		PackageID:        pkg.ID,
		SubscriptionType: pkg.PackageKey,
		Status:           model.SubscriptionStatusActive,
		ComboName:        pkg.PackageName,
		ComboAmount:      o.Amount,
		StartDate:        start,
		EndDate:          end,
	}
	if err := u.subs.Upsert(ctx, tx, sub); err != nil {
		warn := domain.Provisioning("subscription upsert", err)
		u.log.Error().Err(warn).Str("order_no", o.OrderNo).Msg("subscription upsert failed")
		metrics.IncGrant("subscription", "error")
	} else {
		granted = append(granted, "subscription")
		metrics.IncGrant("subscription", "ok")
	}

	return granted, nil
}

func (u *benefitUC) RepairSubscription(ctx context.Context, tx repository.Tx, o *model.Order) (bool, error) {
	if o == nil || o.UserID == nil || *o.UserID == "" || o.IsCampPackage() {
		return false, nil
	}
	if _, err := u.subs.FindByUserID(ctx, tx, *o.UserID); err == nil {
		return false, nil // nothing missing
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	pkg, err := u.packages.FindByKey(ctx, tx, o.PackageKey)
	if err != nil {
		return false, err
	}

	start := time.Now()
	if o.PaidAt != nil {
		start = *o.PaidAt
	}
	sub := &model.Subscription{
		ID:               uuid.NewString(),
		UserID:           *o.UserID,
		PackageID:        pkg.ID,
		SubscriptionType: pkg.PackageKey,
		Status:           model.SubscriptionStatusActive,
		ComboName:        pkg.PackageName,
		ComboAmount:      o.Amount,
		StartDate:        start,
		EndDate:          start.Add(pkg.Duration()),
	}
	if err := u.subs.Upsert(ctx, tx, sub); err != nil {
		return false, err
	}
	u.log.Info().Str("order_no", o.OrderNo).Str("user_id", *o.UserID).Msg("repaired missing subscription")
	return true, nil
}
