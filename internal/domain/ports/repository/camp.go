package repository

import (
	"context"

	"wellness-order-service/internal/domain/model"
)

type CampRepository interface {
	SavePurchase(ctx context.Context, tx Tx, p *model.CampPurchase) error
	ListPurchasesByUser(ctx context.Context, tx Tx, userID string) ([]*model.CampPurchase, error)
	FindTemplate(ctx context.Context, tx Tx, campType string) (*model.CampTemplate, error)
}
