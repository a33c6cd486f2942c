package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	repo "commerce/internal/repository"

	"gorm.io/gorm"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

var _ repo.CatalogRepository = (*CatalogGormRepository)(nil)

// DI
func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// 単位をリビジョン指定で取得（オプション・価格・在庫・商品も埋める）
func (r *CatalogGormRepository) UnitByID(ctx context.Context, id, revision int64, opts model.CatalogOptions) (*model.Unit, error) {
	tx := r.db.WithContext(ctx)

	q := tx.Where("unit_id = ? AND revision_id = ?", id, revision)
	// 非表示・販売終了は指定があるときだけ
	if !opts.IncludeInvisible {
		q = q.Where("visible = ? AND deleted_at IS NULL", true)
	}
	var row db.ProductUnitRow
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unit %d revision %d", repo.ErrNotFound, id, revision)
	}
	if err != nil {
		return nil, err
	}

	u := &model.Unit{
		ID:         row.UnitID,
		RevisionID: row.RevisionID,
		ProductID:  row.ProductID,
		SKU:        row.SKU,
		Barcode:    row.Barcode,
		Weight:     row.WeightGrams,
		Visible:    row.Visible,
		Options:    []model.UnitOption{},
		Prices:     map[string]map[string]float64{},
		Stock:      map[string]int64{},
	}

	var stock []db.ProductUnitStockRow
	if err := tx.Where("unit_id = ?", id).Order("location").Find(&stock).Error; err != nil {
		return nil, err
	}
	for _, s := range stock {
		u.Stock[s.Location] = s.Stock
	}
	//在庫切れは指定があるときだけ
	if !opts.IncludeOutOfStock && u.TotalStock() <= 0 {
		return nil, fmt.Errorf("%w: unit %d is out of stock", repo.ErrNotFound, id)
	}

	var options []db.ProductUnitOptionRow
	if err := tx.Where("unit_id = ? AND revision_id = ?", id, revision).Order("option_name").Find(&options).Error; err != nil {
		return nil, err
	}
	for _, o := range options {
		u.Options = append(u.Options, model.UnitOption{Name: o.OptionName, Value: o.Value})
	}

	var prices []db.ProductUnitPriceRow
	if err := tx.Where("unit_id = ?", id).Find(&prices).Error; err != nil {
		return nil, err
	}
	for _, p := range prices {
		if u.Prices[p.Type] == nil {
			u.Prices[p.Type] = map[string]float64{}
		}
		u.Prices[p.Type][p.CurrencyID] = p.Price
	}

	p, err := r.ProductByID(ctx, row.ProductID, opts)
	if err != nil {
		return nil, err
	}
	u.Product = p
	return u, nil
}

// IDで商品を取得
func (r *CatalogGormRepository) ProductByID(ctx context.Context, id int64, opts model.CatalogOptions) (*model.Product, error) {
	q := r.db.WithContext(ctx).Where("product_id = ?", id)
	if !opts.IncludeInvisible {
		q = q.Where("deleted_at IS NULL")
	}
	var row db.ProductRow
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", repo.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	p := &model.Product{
		ID:          row.ProductID,
		Name:        row.Name,
		Brand:       row.Brand,
		TaxRate:     row.TaxRate,
		TaxStrategy: row.TaxStrategy,
	}
	if row.DeletedAt != nil {
		t := time.Unix(*row.DeletedAt, 0).UTC()
		p.DeletedAt = &t
	}
	return p, nil
}
