// File: internal/usecase/callback_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/adapter"
	"wellness-order-service/internal/domain/ports/repository"
	"wellness-order-service/internal/infra/payment"
)

// CallbackOutcome tells the handler what actually happened so it can pick
// the right metric; the provider-facing response is derived from the error
// alone.
type CallbackOutcome string

const (
	OutcomePaid      CallbackOutcome = "paid"      // first transition to paid
	OutcomeDuplicate CallbackOutcome = "duplicate" // provider retry; possibly self-healed
	OutcomeIgnored   CallbackOutcome = "ignored"   // non-success trade status, acked
)

// Compile-time check
var _ PaymentCallbackUseCase = (*callbackUC)(nil)

// PaymentCallbackUseCase handles inbound provider notifications.
//
// Hard failures (TrustError, ErrOrderNotFound) make the handler answer
// "fail" so the provider retries. Everything downstream of the order-row
// update is best-effort and only logged.
type PaymentCallbackUseCase interface {
	HandleAlipay(ctx context.Context, params map[string]string) (CallbackOutcome, error)
}

type callbackUC struct {
	verifier adapter.SignatureVerifier // nil when the public key is not configured
	orders   repository.OrderRepository
	benefits BenefitUseCase
	referral ReferralUseCase
	log      *zerolog.Logger
}

func NewPaymentCallbackUseCase(
	verifier adapter.SignatureVerifier,
	orders repository.OrderRepository,
	benefits BenefitUseCase,
	referral ReferralUseCase,
	logger *zerolog.Logger,
) *callbackUC {
	return &callbackUC{verifier: verifier, orders: orders, benefits: benefits, referral: referral, log: logger}
}

func (u *callbackUC) HandleAlipay(ctx context.Context, params map[string]string) (CallbackOutcome, error) {
	// Trust gate: nothing in params may be believed before this passes.
	if u.verifier == nil {
		return "", domain.Trust("alipay public key not configured", nil)
	}
	if err := u.verifier.Verify(params); err != nil {
		return "", err
	}

	orderNo := params[payment.FieldOrderNo]
	tradeNo := params[payment.FieldTradeNo]
	tradeStatus := params[payment.FieldTradeStatus]

	u.log.Info().
		Str("order_no", orderNo).
		Str("trade_no", tradeNo).
		Str("trade_status", tradeStatus).
		Str("total_amount", params[payment.FieldTotalAmount]).
		Msg("alipay callback received")

	if !payment.PaidStatus(tradeStatus) {
		return OutcomeIgnored, nil
	}

	o, err := u.orders.FindByOrderNo(ctx, repository.NoTX, orderNo)
	if err != nil {
		// Unknown order: fail the callback so the provider retries; the
		// checkout row may simply not have committed yet.
		return "", err
	}

	if o.Status == model.OrderStatusPaid {
		u.selfHeal(ctx, o)
		return OutcomeDuplicate, nil
	}

	paidAt := time.Now()
	won, err := u.orders.MarkPaidIfPending(ctx, repository.NoTX, orderNo, tradeNo, paidAt)
	if err != nil {
		return "", err
	}
	if !won {
		// A concurrent retry beat us to the transition; treat ours as the
		// duplicate it is.
		refreshed, rerr := u.orders.FindByOrderNo(ctx, repository.NoTX, orderNo)
		if rerr == nil {
			u.selfHeal(ctx, refreshed)
		}
		return OutcomeDuplicate, nil
	}

	o.Status = model.OrderStatusPaid
	o.TradeNo = &tradeNo
	o.PaidAt = &paidAt
	u.log.Info().Str("order_no", orderNo).Msg("order marked paid")

	// Guest orders carry no user yet; benefits are granted at claim time.
	if o.UserID != nil && *o.UserID != "" {
		if _, err := u.benefits.Grant(ctx, repository.NoTX, o); err != nil {
			u.log.Error().Err(err).Str("order_no", orderNo).Msg("benefit grant failed")
		}
		if err := u.referral.OnOrderBound(ctx, repository.NoTX, *o.UserID, o); err != nil {
			u.log.Error().Err(err).Str("order_no", orderNo).Msg("referral processing failed")
		}
	}

	return OutcomePaid, nil
}

// selfHeal repairs a missing subscription row on duplicate delivery. Camp
// orders never create subscription rows, so they are excluded.
func (u *callbackUC) selfHeal(ctx context.Context, o *model.Order) {
	if o.UserID == nil || *o.UserID == "" || o.IsCampPackage() {
		return
	}
	repaired, err := u.benefits.RepairSubscription(ctx, repository.NoTX, o)
	if err != nil {
		u.log.Error().Err(err).Str("order_no", o.OrderNo).Msg("subscription repair failed")
		return
	}
	if repaired {
		u.log.Info().Str("order_no", o.OrderNo).Msg("subscription repaired on duplicate callback")
	}
}
