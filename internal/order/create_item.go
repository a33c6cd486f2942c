package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/normalize"
	"commerce/internal/status"
	"commerce/internal/validator"
)

const (
	insertItem = `INSERT INTO order_item
	(order_id, list_price, actual_price, base_price, net, discount, tax, gross, rrp,
	 tax_rate, product_tax_rate, tax_strategy, product_id, product_name, unit_id, unit_revision,
	 sku, barcode, options, brand, weight_grams, stock_location, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING item_id`

	insertItemStatus = `INSERT INTO order_item_status
	(item_id, order_id, status_code, created_at, created_by) VALUES (?, ?, ?, ?, ?)`

	insertPersonalisation = `INSERT INTO order_item_personalisation
	(item_id, name, value) VALUES (?, ?, ?)`
)

// ItemCreate は明細を作成する。最初のステータスとパーソナライズも同じトランザクションに積む
type ItemCreate struct {
	c     creator
	items ItemLoader
}

func NewItemCreate(exec db.Executor, items ItemLoader, events EventDispatcher, opts ...CreateOption) *ItemCreate {
	return &ItemCreate{c: newCreator(exec, events, opts), items: items}
}

func (p *ItemCreate) WithTransaction(tx *db.Transaction) *ItemCreate {
	c := *p
	c.c.tx = tx
	return &c
}

func (p *ItemCreate) Create(ctx context.Context, it *model.Item) (*model.Item, error) {
	if err := p.assemble(ctx, it); err != nil {
		return nil, err
	}
	return create(ctx, p.c, it, createSteps[model.Item]{
		kind:       "item",
		authorship: func(it *model.Item) *model.Authorship { return &it.Authorship },
		validate:   p.validate,
		enqueue:    p.enqueue,
		bind:       func(it *model.Item, v db.IDVar) { it.IDVar = v },
		reload:     p.items.ByID,
	})
}

// assemble は単位だけ指定された明細にカタログの商品情報を写す（販売中の単位のみ）
func (p *ItemCreate) assemble(ctx context.Context, it *model.Item) error {
	if it.SKU != "" || it.UnitID == 0 || p.items.catalog == nil {
		return nil
	}
	u, err := p.items.catalog.UnitByID(ctx, it.UnitID, it.UnitRevision, model.CatalogOptions{})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &validator.FieldError{Field: "unit_id", Message: "unit is not available"}
		}
		return err
	}
	it.Populate(u)
	return nil
}

func (p *ItemCreate) validate(it *model.Item) error {
	if err := validator.ValidateItem(it); err != nil {
		return err
	}
	if it.Status != nil && !p.items.statuses.Catalog().Exists(it.Status.Code) {
		return fmt.Errorf("%w: %w: %d", ErrValidation, status.ErrUnknownStatus, it.Status.Code)
	}
	return nil
}

func (p *ItemCreate) enqueue(tx *db.Transaction, it *model.Item) (db.IDVar, error) {
	var location any
	if it.StockLocation != nil {
		location = it.StockLocation.Name
	}
	created := it.Authorship.CreatedAt.Unix()
	v, err := tx.AddInsert("item", insertItem,
		it.OrderID,
		normalize.Round(it.ListPrice, 2), normalize.Round(it.ActualPrice, 2), normalize.Round(it.BasePrice, 2),
		normalize.Round(it.Net, 2), normalize.Round(it.Discount, 2), normalize.Round(it.Tax, 2),
		normalize.Round(it.Gross, 2), normalize.Round(it.RRP, 2),
		normalize.Round(it.TaxRate, 4), normalize.Round(it.ProductTaxRate, 4), it.TaxStrategy,
		it.ProductID, it.ProductName, it.UnitID, it.UnitRevision,
		it.SKU, it.Barcode, it.Options, it.Brand, it.Weight, location,
		created, it.Authorship.CreatedBy,
	)
	if err != nil {
		return "", err
	}

	code := status.AwaitingDispatch
	if it.Status != nil {
		code = it.Status.Code
	}
	if err := tx.Add(insertItemStatus, v, it.OrderID, int(code), created, it.Authorship.CreatedBy); err != nil {
		return "", err
	}

	names := make([]string, 0, len(it.Personalisation))
	for name := range it.Personalisation {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := tx.Add(insertPersonalisation, v, name, it.Personalisation[name]); err != nil {
			return "", err
		}
	}
	return v, nil
}
