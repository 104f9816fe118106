//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/usecase"
)

type redeemDeps struct {
	partners *MockPartnerRepo
	packages *MockPackageRepo
	accounts *MockAccountRepo
	subs     *MockSubscriptionRepo
	camps    *MockCampRepo
	uc       usecase.SelfRedeemUseCase
}

func newRedeemDeps() *redeemDeps {
	d := &redeemDeps{
		partners: NewMockPartnerRepo(),
		packages: NewMockPackageRepo(),
		accounts: NewMockAccountRepo(),
		subs:     NewMockSubscriptionRepo(),
		camps:    NewMockCampRepo(),
	}
	logger := newTestLogger()
	benefits := usecase.NewBenefitUseCase(d.packages, d.accounts, d.subs, d.camps, logger)
	d.uc = usecase.NewSelfRedeemUseCase(d.partners, d.packages, benefits, logger)
	return d
}

func partnerPackage() *model.Package {
	return &model.Package{
		ID: "pkg-p", PackageKey: model.PartnerPackageKey, PackageName: "合伙人套餐",
		AIQuota: 500, DurationDays: 365, Price: 99900,
	}
}

func TestRedeemUC_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes one slot and grants the partner package", func(t *testing.T) {
		d := newRedeemDeps()
		d.packages.Put(partnerPackage())
		d.partners.Put(&model.Partner{ID: "p-1", UserID: "user-1", PrepurchaseCount: 3})

		granted, err := d.uc.Redeem(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(granted) != 2 {
			t.Errorf("expected quota and subscription granted, got %v", granted)
		}
		if got := d.partners.Remaining("user-1"); got != 2 {
			t.Errorf("expected 2 slots left, got %d", got)
		}
		if got := d.accounts.TotalQuota("user-1"); got != 500 {
			t.Errorf("expected quota 500, got %d", got)
		}
		if d.subs.Get("user-1") == nil {
			t.Error("expected a subscription row")
		}
	})

	t.Run("non-partner is rejected", func(t *testing.T) {
		d := newRedeemDeps()
		_, err := d.uc.Redeem(ctx, "user-1")
		if !errors.Is(err, domain.ErrPartnerNotFound) {
			t.Fatalf("expected ErrPartnerNotFound, got %v", err)
		}
	})

	t.Run("zero slots fails without granting anything", func(t *testing.T) {
		d := newRedeemDeps()
		d.packages.Put(partnerPackage())
		d.partners.Put(&model.Partner{ID: "p-1", UserID: "user-1", PrepurchaseCount: 0})

		_, err := d.uc.Redeem(ctx, "user-1")
		if !errors.Is(err, domain.ErrNoPrepurchaseLeft) {
			t.Fatalf("expected ErrNoPrepurchaseLeft, got %v", err)
		}
		if d.accounts.AddQuotaCalls != 0 || d.subs.Count() != 0 {
			t.Error("a failed redeem must not grant anything")
		}
	})

	t.Run("exhausts slots one by one", func(t *testing.T) {
		d := newRedeemDeps()
		d.packages.Put(partnerPackage())
		d.partners.Put(&model.Partner{ID: "p-1", UserID: "user-1", PrepurchaseCount: 2})

		for i := 0; i < 2; i++ {
			if _, err := d.uc.Redeem(ctx, "user-1"); err != nil {
				t.Fatalf("redeem %d: %v", i, err)
			}
		}
		if _, err := d.uc.Redeem(ctx, "user-1"); !errors.Is(err, domain.ErrNoPrepurchaseLeft) {
			t.Fatalf("expected ErrNoPrepurchaseLeft after exhaustion, got %v", err)
		}
		if got := d.accounts.TotalQuota("user-1"); got != 1000 {
			t.Errorf("expected quota 1000 after two redeems, got %d", got)
		}
	})

	t.Run("missing partner package consumes the slot but grants nothing", func(t *testing.T) {
		d := newRedeemDeps()
		d.partners.Put(&model.Partner{ID: "p-1", UserID: "user-1", PrepurchaseCount: 1})

		granted, err := d.uc.Redeem(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected soft failure, got %v", err)
		}
		if len(granted) != 0 {
			t.Errorf("expected nothing granted, got %v", granted)
		}
		if got := d.partners.Remaining("user-1"); got != 0 {
			t.Errorf("expected the slot consumed, got %d left", got)
		}
	})
}
