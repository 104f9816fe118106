package repository

import (
	"context"

	"wellness-order-service/internal/domain/model"
)

type PackageRepository interface {
	FindByKey(ctx context.Context, tx Tx, packageKey string) (*model.Package, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Package, error)
}
