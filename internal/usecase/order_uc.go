// File: internal/usecase/order_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// OrderUseCase starts a checkout: it snapshots the package price/name into a
// pending order. userID is nil for guest checkouts; those orders are bound
// later through the claim flow.
type OrderUseCase interface {
	Create(ctx context.Context, packageKey string, userID *string, payType string) (*model.Order, error)
}

type orderUC struct {
	orders   repository.OrderRepository
	packages repository.PackageRepository
	log      *zerolog.Logger
}

func NewOrderUseCase(orders repository.OrderRepository, packages repository.PackageRepository, logger *zerolog.Logger) *orderUC {
	return &orderUC{orders: orders, packages: packages, log: logger}
}

func (u *orderUC) Create(ctx context.Context, packageKey string, userID *string, payType string) (*model.Order, error) {
	if packageKey == "" {
		return nil, domain.ErrInvalidArgument
	}
	if payType == "" {
		payType = "alipay"
	}

	pkg, err := u.packages.FindByKey(ctx, repository.NoTX, packageKey)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := &model.Order{
		ID:          uuid.NewString(),
		OrderNo:     NewOrderNo(),
		UserID:      userID,
		PackageKey:  pkg.PackageKey,
		PackageName: pkg.PackageName,
		Amount:      pkg.Price,
		PayType:     payType,
		Status:      model.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.orders.Save(ctx, repository.NoTX, o); err != nil {
		return nil, err
	}

	u.log.Info().Str("order_no", o.OrderNo).Str("package_key", packageKey).Msg("order created")
	return o, nil
}

// NewOrderNo returns a sortable, unique external order number. ULIDs keep
// order numbers monotonic-ish for support staff scanning provider consoles.
func NewOrderNo() string {
	return "ORD" + ulid.Make().String()
}
