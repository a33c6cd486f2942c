package repository

import (
	"context"
	"errors"

	"commerce/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品カタログの取得を約束（過去の注文から引くので条件で販売終了品も返せる）
type CatalogRepository interface {
	UnitByID(ctx context.Context, id, revision int64, opts model.CatalogOptions) (*model.Unit, error)
	ProductByID(ctx context.Context, id int64, opts model.CatalogOptions) (*model.Product, error)
}
