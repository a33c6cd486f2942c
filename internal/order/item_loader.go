package order

import (
	"context"
	"fmt"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/normalize"
	"commerce/internal/status"
)

var itemTable = table[model.Item]{
	name:  "order_item",
	pk:    "item_id",
	newFn: model.NewItem,
	fields: append([]field[model.Item]{
		int64Field("item_id", func(i *model.Item) *int64 { return &i.ID }),
		int64Field("order_id", func(i *model.Item) *int64 { return &i.OrderID }),
		moneyField("list_price", func(i *model.Item) *float64 { return &i.ListPrice }),
		moneyField("actual_price", func(i *model.Item) *float64 { return &i.ActualPrice }),
		moneyField("base_price", func(i *model.Item) *float64 { return &i.BasePrice }),
		moneyField("net", func(i *model.Item) *float64 { return &i.Net }),
		moneyField("discount", func(i *model.Item) *float64 { return &i.Discount }),
		moneyField("tax", func(i *model.Item) *float64 { return &i.Tax }),
		moneyField("gross", func(i *model.Item) *float64 { return &i.Gross }),
		moneyField("rrp", func(i *model.Item) *float64 { return &i.RRP }),
		rateField("tax_rate", func(i *model.Item) *float64 { return &i.TaxRate }),
		rateField("product_tax_rate", func(i *model.Item) *float64 { return &i.ProductTaxRate }),
		stringField("tax_strategy", func(i *model.Item) *string { return &i.TaxStrategy }),
		int64Field("product_id", func(i *model.Item) *int64 { return &i.ProductID }),
		stringField("product_name", func(i *model.Item) *string { return &i.ProductName }),
		int64Field("unit_id", func(i *model.Item) *int64 { return &i.UnitID }),
		int64Field("unit_revision", func(i *model.Item) *int64 { return &i.UnitRevision }),
		stringField("sku", func(i *model.Item) *string { return &i.SKU }),
		stringField("barcode", func(i *model.Item) *string { return &i.Barcode }),
		stringField("options", func(i *model.Item) *string { return &i.Options }),
		stringField("brand", func(i *model.Item) *string { return &i.Brand }),
		int64Field("weight_grams", func(i *model.Item) *int64 { return &i.Weight }),
		//名前だけ持たせて後でロケーション一覧から引く
		mapped("stock_location", locationRef, func(i *model.Item) **model.Location { return &i.StockLocation }),
	}, authorshipFields(func(i *model.Item) *model.Authorship { return &i.Authorship }, false)...),
	id:      func(i *model.Item) int64 { return i.ID },
	orderID: func(i *model.Item) int64 { return i.OrderID },
}

func locationRef(v any) (*model.Location, error) {
	name, err := normalize.String(v)
	if err != nil || name == "" {
		return nil, err
	}
	return &model.Location{Name: name}, nil
}

// ItemLoader は注文明細を読み込む。
// 単体で読んだ明細の注文は orders で引く（削除済みの扱いも揃える）
type ItemLoader struct {
	b         base[model.Item]
	statuses  *status.Resolver
	locations model.Locations
	catalog   model.CatalogLoader
	orders    *Loader
}

func NewItemLoader(q db.Query, statuses *status.Resolver, locations model.Locations, catalog model.CatalogLoader, log *logger.Logger) ItemLoader {
	return ItemLoader{
		b:         base[model.Item]{q: q, log: logger.OrNop(log), t: itemTable},
		statuses:  statuses,
		locations: locations,
		catalog:   catalog,
	}
}

// IncludeDeleted は注文ローダーにも同じ設定を渡す。
func (l ItemLoader) IncludeDeleted(v bool) ItemLoader {
	l.b.includeDeleted = v
	if l.orders != nil {
		l.orders = l.orders.IncludeDeleted(v)
	}
	return l
}

func (l ItemLoader) DeletedIncluded() bool { return l.b.includeDeleted }

// OrderLoader は注文の参照に使うローダー（未設定ならnil）
func (l ItemLoader) OrderLoader() *Loader { return l.orders }

func (l ItemLoader) withOrders(o *Loader) ItemLoader {
	l.orders = o
	return l
}

func (l ItemLoader) ByID(ctx context.Context, id int64) (*model.Item, error) {
	is, err := l.b.byIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	it, err := first(is, id)
	if err != nil {
		return nil, err
	}
	if err := l.attach(ctx, is); err != nil {
		return nil, err
	}
	if err := l.attachOrders(ctx, is); err != nil {
		return nil, err
	}
	return it, nil
}

func (l ItemLoader) ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Item, error) {
	is, err := l.b.byIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	if err := l.attach(ctx, is); err != nil {
		return nil, err
	}
	if err := l.attachOrders(ctx, is); err != nil {
		return nil, err
	}
	return indexByID(is, itemTable.id), nil
}

func (l ItemLoader) ByOrderID(ctx context.Context, orderID int64) ([]*model.Item, error) {
	m, err := l.ByOrderIDs(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	return forOrder(m, orderID), nil
}

// ByOrderIDs は注文の参照を付けない（集約側で付ける）
func (l ItemLoader) ByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*model.Item, error) {
	ids := uniqueIDs(orderIDs)
	is, err := l.b.byOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := l.attach(ctx, is); err != nil {
		return nil, err
	}
	return groupByOrder(ids, is, itemTable.orderID), nil
}

// attach はステータス・パーソナライズ・在庫ロケーション・カタログを付ける。
func (l ItemLoader) attach(ctx context.Context, is []*model.Item) error {
	if len(is) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(is))
	for _, it := range is {
		ids = append(ids, it.ID)
	}

	histories, err := loadHistory(ctx, l.b.q, "order_item_status", "item_id", ids)
	if err != nil {
		return err
	}
	current, err := resolveStatuses(l.statuses, histories)
	if err != nil {
		return fmt.Errorf("item status: %w", err)
	}

	res, err := l.b.q.Run(ctx,
		"SELECT item_id, name, value FROM order_item_personalisation WHERE item_id IN ? ORDER BY item_id, name", ids)
	if err != nil {
		return err
	}
	personalisation := make(map[int64]model.Personalisation, len(is))
	for i, row := range res.Rows() {
		id, err := normalize.Int64(row["item_id"])
		if err != nil {
			return fmt.Errorf("order_item_personalisation row %d: %w", i, err)
		}
		name, _ := normalize.String(row["name"])
		value, _ := normalize.String(row["value"])
		if personalisation[id] == nil {
			personalisation[id] = model.Personalisation{}
		}
		personalisation[id][name] = value
	}

	for _, it := range is {
		it.Status = current[it.ID]
		if p, ok := personalisation[it.ID]; ok {
			it.Personalisation = p
		}
		if it.StockLocation != nil {
			if loc, ok := l.locations.Get(it.StockLocation.Name); ok {
				it.StockLocation = &loc
			} else {
				l.b.log.Debug("unknown stock location", "item_id", it.ID, "location", it.StockLocation.Name)
			}
		}
		it.AttachCatalog(l.catalog, l.b.log)
	}
	return nil
}

// 単体で読んだ明細に注文を付ける（同じ注文は1回だけ読む）
func (l ItemLoader) attachOrders(ctx context.Context, is []*model.Item) error {
	if l.orders == nil || len(is) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(is))
	for _, it := range is {
		ids = append(ids, it.OrderID)
	}
	orders, err := l.orders.ByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, it := range is {
		if o, ok := orders.Get(it.OrderID); ok {
			it.Order = o
		}
	}
	return nil
}
