package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
)

var _ repository.PackageRepository = (*packageRepo)(nil)

type packageRepo struct{ pool *pgxpool.Pool }

func NewPackageRepo(pool *pgxpool.Pool) *packageRepo {
	return &packageRepo{pool: pool}
}

func (r *packageRepo) FindByKey(ctx context.Context, tx repository.Tx, packageKey string) (*model.Package, error) {
	const q = `
SELECT id, package_key, package_name, ai_quota, duration_days, price, created_at
  FROM packages
 WHERE package_key=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, packageKey)
	if err != nil {
		return nil, err
	}
	p := &model.Package{}
	if err := row.Scan(&p.ID, &p.PackageKey, &p.PackageName, &p.AIQuota, &p.DurationDays, &p.Price, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *packageRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	const q = `
SELECT id, package_key, package_name, ai_quota, duration_days, price, created_at
  FROM packages
 ORDER BY price ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Package
	for rows.Next() {
		p := &model.Package{}
		if err := rows.Scan(&p.ID, &p.PackageKey, &p.PackageName, &p.AIQuota, &p.DurationDays, &p.Price, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
