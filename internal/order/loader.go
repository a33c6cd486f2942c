package order

import (
	"context"
	"errors"
	"fmt"
	"math"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/normalize"
	"commerce/internal/status"
)

// UserLoader は購入者の取得（無ければErrNotFound）
type UserLoader interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Range はページング（Limitが0なら全件）
type Range struct {
	Offset int
	Limit  int
}

// Orders は読み込んだ注文（読み込み順を保つ）
type Orders struct {
	ids  []int64
	byID map[int64]*model.Order
}

// NewOrders は渡した順に並べる（同じIDは最初のものだけ）
func NewOrders(list ...*model.Order) Orders {
	o := Orders{ids: []int64{}, byID: map[int64]*model.Order{}}
	for _, order := range list {
		o.add(order)
	}
	return o
}

func (o *Orders) add(order *model.Order) {
	if _, ok := o.byID[order.ID]; ok {
		return
	}
	o.ids = append(o.ids, order.ID)
	o.byID[order.ID] = order
}

func (o Orders) Len() int { return len(o.ids) }

func (o Orders) IDs() []int64 { return append([]int64{}, o.ids...) }

func (o Orders) Get(id int64) (*model.Order, bool) {
	order, ok := o.byID[id]
	return order, ok
}

// Map は id -> 注文（空でもnilにしない）
func (o Orders) Map() map[int64]*model.Order {
	out := make(map[int64]*model.Order, len(o.byID))
	for k, v := range o.byID {
		out[k] = v
	}
	return out
}

// List は読み込み順
func (o Orders) List() []*model.Order {
	out := make([]*model.Order, 0, len(o.ids))
	for _, id := range o.ids {
		out = append(out, o.byID[id])
	}
	return out
}

// Entities は注文配下のサブローダー一式
type Entities struct {
	Addresses  AddressLoader
	Items      ItemLoader
	Payments   PaymentLoader
	Notes      NoteLoader
	Dispatches DispatchLoader
	Refunds    RefundLoader
}

// IncludeDeleted は全サブローダーに同じ設定をしたコピー
func (e Entities) IncludeDeleted(v bool) Entities {
	e.Addresses = e.Addresses.IncludeDeleted(v)
	e.Items = e.Items.IncludeDeleted(v)
	e.Payments = e.Payments.IncludeDeleted(v)
	e.Notes = e.Notes.IncludeDeleted(v)
	e.Dispatches = e.Dispatches.IncludeDeleted(v)
	e.Refunds = e.Refunds.IncludeDeleted(v)
	return e
}

// Loader は注文の集約を組み立てる。
// 値は作成後に変えない（IncludeDeletedはコピーを返す）
type Loader struct {
	q              db.Query
	log            *logger.Logger
	statuses       *status.Resolver
	itemStatuses   *status.Catalog
	users          UserLoader
	entities       Entities
	includeDeleted bool
}

func NewLoader(q db.Query, users UserLoader, statuses, itemStatuses *status.Catalog, entities Entities, log *logger.Logger) *Loader {
	return &Loader{
		q:            q,
		log:          logger.OrNop(log),
		statuses:     status.NewResolver(statuses),
		itemStatuses: itemStatuses,
		users:        users,
		entities:     entities,
	}
}

func (l *Loader) IncludeDeleted(v bool) *Loader {
	c := *l
	c.includeDeleted = v
	return &c
}

func (l *Loader) DeletedIncluded() bool { return l.includeDeleted }

// Entities はこのローダーと同じ設定のサブローダー（毎回新しいコピー）
func (l *Loader) Entities() Entities {
	e := l.entities.IncludeDeleted(l.includeDeleted)
	e.Items = e.Items.withOrders(l)
	return e
}

func (l *Loader) ByID(ctx context.Context, id int64) (*model.Order, error) {
	orders, err := l.load(ctx, []int64{id}, "")
	if err != nil {
		return nil, err
	}
	o, ok := orders.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return o, nil
}

func (l *Loader) ByIDs(ctx context.Context, ids []int64) (Orders, error) {
	return l.load(ctx, ids, "")
}

func (l *Loader) ByUser(ctx context.Context, userID int64) (Orders, error) {
	return l.loadQuery(ctx, "", "SELECT order_id FROM order_summary WHERE user_id = ?"+l.deletedFilter("order_summary")+" ORDER BY order_id", userID)
}

// 現在のステータス（最新の履歴行）を求める相関サブクエリ
const currentOrderStatus = `(SELECT s.status_code FROM order_status s
	WHERE s.order_id = order_summary.order_id
	ORDER BY s.created_at DESC, s.status_code DESC LIMIT 1)`

// ByStatus は現在のステータスで絞り込む（新しい注文順）
func (l *Loader) ByStatus(ctx context.Context, codes []status.Code, r Range) (Orders, error) {
	if err := l.validateCodes(l.statuses.Catalog(), codes); err != nil {
		return Orders{}, err
	}
	if len(codes) == 0 {
		return NewOrders(), nil
	}
	sql := "SELECT order_id FROM order_summary WHERE " + currentOrderStatus + " IN ?" +
		l.deletedFilter("order_summary") + " ORDER BY created_at DESC, order_id DESC"
	args := []any{codes}
	sql, args = withRange(sql, args, r)
	return l.loadQuery(ctx, "order_summary.created_at DESC, order_summary.order_id DESC", sql, args...)
}

// ByCurrentItemStatus は現在のステータスが一致する明細を1つ以上持つ注文
func (l *Loader) ByCurrentItemStatus(ctx context.Context, codes []status.Code) (Orders, error) {
	if err := l.validateCodes(l.itemStatuses, codes); err != nil {
		return Orders{}, err
	}
	if len(codes) == 0 {
		return NewOrders(), nil
	}
	res, err := l.q.Run(ctx, `SELECT s.item_id, i.order_id, s.status_code, s.created_at
		FROM order_item_status s
		JOIN order_item i ON i.item_id = s.item_id
		WHERE s.item_id IN (SELECT item_id FROM order_item_status WHERE status_code IN ?)`+l.deletedFilter("i")+`
		ORDER BY s.item_id, s.created_at DESC, s.status_code DESC`, codes)
	if err != nil {
		return Orders{}, err
	}

	type itemHistory struct {
		orderID int64
		entries []status.Entry
	}
	histories := map[int64]*itemHistory{}
	itemOrder := []int64{}
	for i, row := range res.Rows() {
		itemID, err := normalize.Int64(row["item_id"])
		if err != nil {
			return Orders{}, fmt.Errorf("item status row %d: %w", i, err)
		}
		orderID, err := normalize.Int64(row["order_id"])
		if err != nil {
			return Orders{}, fmt.Errorf("item status row %d: %w", i, err)
		}
		code, err := normalize.Int64(row["status_code"])
		if err != nil {
			return Orders{}, fmt.Errorf("item status row %d: %w", i, err)
		}
		at, err := normalize.Unix(row["created_at"])
		if err != nil {
			return Orders{}, fmt.Errorf("item status row %d: %w", i, err)
		}
		h, ok := histories[itemID]
		if !ok {
			h = &itemHistory{orderID: orderID}
			histories[itemID] = h
			itemOrder = append(itemOrder, itemID)
		}
		h.entries = append(h.entries, status.Entry{Code: status.Code(code), At: at})
	}

	want := make(map[status.Code]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	orderIDs := make([]int64, 0, len(itemOrder))
	for _, itemID := range itemOrder {
		h := histories[itemID]
		latest, err := status.Latest(h.entries)
		if err != nil {
			continue
		}
		if want[latest.Code] {
			orderIDs = append(orderIDs, h.orderID)
		}
	}
	l.log.Debug("orders by current item status", "codes", codes, "items", len(itemOrder), "orders", len(uniqueIDs(orderIDs)))
	return l.load(ctx, orderIDs, "")
}

// ByTrackingCode は発送の追跡番号で引く。
func (l *Loader) ByTrackingCode(ctx context.Context, code string) (Orders, error) {
	return l.loadQuery(ctx, "", `SELECT DISTINCT os.order_id FROM order_summary os
		JOIN order_dispatch od ON od.order_id = os.order_id
		WHERE od.code = ?`+l.deletedFilter("od")+` ORDER BY os.order_id`, code)
}

func (l *Loader) BySlice(ctx context.Context, offset, limit int) (Orders, error) {
	sql, args := withRange("SELECT order_id FROM order_summary WHERE 1 = 1"+l.deletedFilter("order_summary")+" ORDER BY order_id", nil,
		Range{Offset: offset, Limit: limit})
	return l.loadQuery(ctx, "", sql, args...)
}

// Count は注文数（コード指定時は現在のステータスで絞り込む）
func (l *Loader) Count(ctx context.Context, codes ...status.Code) (int64, error) {
	if err := l.validateCodes(l.statuses.Catalog(), codes); err != nil {
		return 0, err
	}
	sql := "SELECT COUNT(*) AS n FROM order_summary WHERE 1 = 1" + l.deletedFilter("order_summary")
	var args []any
	if len(codes) > 0 {
		sql += " AND " + currentOrderStatus + " IN ?"
		args = append(args, codes)
	}
	res, err := l.q.Run(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return normalize.Int64(res.Value("n"))
}

func (l *Loader) validateCodes(c *status.Catalog, codes []status.Code) error {
	if err := c.Validate(codes); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (l *Loader) deletedFilter(alias string) string {
	if l.includeDeleted {
		return ""
	}
	return " AND " + alias + ".deleted_at IS NULL"
}

func withRange(sql string, args []any, r Range) (string, []any) {
	if r.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, r.Limit)
		if r.Offset > 0 {
			sql += " OFFSET ?"
			args = append(args, r.Offset)
		}
	} else if r.Offset > 0 {
		//sqliteはLIMIT無しのOFFSETを受け付けない
		sql += " LIMIT ? OFFSET ?"
		args = append(args, int64(math.MaxInt64), r.Offset)
	}
	return sql, args
}

func (l *Loader) loadQuery(ctx context.Context, orderBy, sql string, args ...any) (Orders, error) {
	res, err := l.q.Run(ctx, sql, args...)
	if err != nil {
		return Orders{}, err
	}
	ids, err := res.FlattenIDs("order_id")
	if err != nil {
		return Orders{}, err
	}
	return l.load(ctx, ids, orderBy)
}

var orderTable = table[model.Order]{
	name:  "order_summary",
	pk:    "order_id",
	newFn: model.NewOrder,
	fields: append([]field[model.Order]{
		int64Field("order_id", func(o *model.Order) *int64 { return &o.ID }),
		nullInt64Field("user_id", func(o *model.Order) **int64 { return &o.UserID }),
		stringField("user_email", func(o *model.Order) *string { return &o.UserEmail }),
		stringField("currency_id", func(o *model.Order) *string { return &o.CurrencyID }),
		rateField("conversion_rate", func(o *model.Order) *float64 { return &o.ConversionRate }),
		moneyField("product_net", func(o *model.Order) *float64 { return &o.ProductNet }),
		moneyField("product_discount", func(o *model.Order) *float64 { return &o.ProductDiscount }),
		moneyField("product_tax", func(o *model.Order) *float64 { return &o.ProductTax }),
		moneyField("product_gross", func(o *model.Order) *float64 { return &o.ProductGross }),
		moneyField("total_net", func(o *model.Order) *float64 { return &o.TotalNet }),
		moneyField("total_discount", func(o *model.Order) *float64 { return &o.TotalDiscount }),
		moneyField("total_tax", func(o *model.Order) *float64 { return &o.TotalTax }),
		moneyField("total_gross", func(o *model.Order) *float64 { return &o.TotalGross }),
		boolField("taxable", func(o *model.Order) *bool { return &o.Taxable }),
		stringField("shipping_name", func(o *model.Order) *string { return &o.Shipping.Name }),
		stringField("shipping_display_name", func(o *model.Order) *string { return &o.Shipping.DisplayName }),
		moneyField("shipping_list_price", func(o *model.Order) *float64 { return &o.Shipping.ListPrice }),
		moneyField("shipping_net", func(o *model.Order) *float64 { return &o.Shipping.Net }),
		moneyField("shipping_discount", func(o *model.Order) *float64 { return &o.Shipping.Discount }),
		moneyField("shipping_tax", func(o *model.Order) *float64 { return &o.Shipping.Tax }),
		rateField("shipping_tax_rate", func(o *model.Order) *float64 { return &o.Shipping.TaxRate }),
		moneyField("shipping_gross", func(o *model.Order) *float64 { return &o.Shipping.Gross }),
	}, authorshipFields(func(o *model.Order) *model.Authorship { return &o.Authorship }, true)...),
	id: func(o *model.Order) int64 { return o.ID },
}

const selectOrders = `SELECT
	order_summary.order_id, order_summary.user_id, order_summary.user_email,
	order_summary.currency_id, order_summary.conversion_rate,
	order_summary.product_net, order_summary.product_discount, order_summary.product_tax, order_summary.product_gross,
	order_summary.total_net, order_summary.total_discount, order_summary.total_tax, order_summary.total_gross,
	order_summary.taxable,
	order_summary.created_at, order_summary.created_by,
	order_summary.updated_at, order_summary.updated_by,
	order_summary.deleted_at, order_summary.deleted_by,
	order_shipping.name         AS shipping_name,
	order_shipping.display_name AS shipping_display_name,
	order_shipping.list_price   AS shipping_list_price,
	order_shipping.net          AS shipping_net,
	order_shipping.discount     AS shipping_discount,
	order_shipping.tax          AS shipping_tax,
	order_shipping.tax_rate     AS shipping_tax_rate,
	order_shipping.gross        AS shipping_gross
FROM order_summary
LEFT JOIN order_shipping ON order_shipping.order_id = order_summary.order_id
WHERE order_summary.order_id IN ?`

// load は全ての公開操作が通る組み立て処理。
// IDが空、または1行も一致しなければ空のOrdersを返す（エラーではない）
func (l *Loader) load(ctx context.Context, ids []int64, orderBy string) (Orders, error) {
	out := NewOrders()
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	if orderBy == "" {
		orderBy = "order_summary.order_id"
	}
	res, err := l.q.Run(ctx, selectOrders+l.deletedFilter("order_summary")+" ORDER BY "+orderBy, ids)
	if err != nil {
		return Orders{}, err
	}
	if res.Len() == 0 {
		l.log.Debug("orders not matched", "requested", len(ids), "include_deleted", l.includeDeleted)
		return out, nil
	}
	orders, err := db.Bind(res, orderTable.bind)
	if err != nil {
		return Orders{}, err
	}
	matched := make([]int64, 0, len(orders))
	for _, o := range orders {
		out.add(o)
		matched = append(matched, o.ID)
	}

	if err := l.attachStatus(ctx, out, matched); err != nil {
		return Orders{}, err
	}
	if err := l.attachMetadata(ctx, out, matched); err != nil {
		return Orders{}, err
	}
	if err := l.attachShippingTaxes(ctx, out, matched); err != nil {
		return Orders{}, err
	}
	if err := l.attachUsers(ctx, out); err != nil {
		return Orders{}, err
	}
	if err := l.attachEntities(ctx, out, matched); err != nil {
		return Orders{}, err
	}
	l.log.Debug("orders loaded", "requested", len(ids), "matched", len(matched), "include_deleted", l.includeDeleted)
	return out, nil
}

func (l *Loader) attachStatus(ctx context.Context, orders Orders, ids []int64) error {
	histories, err := loadHistory(ctx, l.q, "order_status", "order_id", ids)
	if err != nil {
		return err
	}
	current, err := resolveStatuses(l.statuses, histories)
	if err != nil {
		return fmt.Errorf("order status: %w", err)
	}
	for id, s := range current {
		if o, ok := orders.Get(id); ok {
			o.Status = s
		}
	}
	return nil
}

func (l *Loader) attachMetadata(ctx context.Context, orders Orders, ids []int64) error {
	res, err := l.q.Run(ctx, `SELECT order_id, "key", "value" FROM order_metadata WHERE order_id IN ?`, ids)
	if err != nil {
		return err
	}
	for i, row := range res.Rows() {
		id, err := normalize.Int64(row["order_id"])
		if err != nil {
			return fmt.Errorf("order_metadata row %d: %w", i, err)
		}
		k, _ := normalize.String(row["key"])
		v, _ := normalize.String(row["value"])
		if o, ok := orders.Get(id); ok {
			o.Metadata[k] = v
		}
	}
	return nil
}

func (l *Loader) attachShippingTaxes(ctx context.Context, orders Orders, ids []int64) error {
	res, err := l.q.Run(ctx, "SELECT order_id, tax_type, tax_rate FROM order_shipping_tax WHERE order_id IN ?", ids)
	if err != nil {
		return err
	}
	for i, row := range res.Rows() {
		id, err := normalize.Int64(row["order_id"])
		if err != nil {
			return fmt.Errorf("order_shipping_tax row %d: %w", i, err)
		}
		rate, err := normalize.Rate(row["tax_rate"])
		if err != nil {
			return fmt.Errorf("order_shipping_tax row %d: %w", i, err)
		}
		typ, _ := normalize.String(row["tax_type"])
		if o, ok := orders.Get(id); ok {
			o.ShippingTaxes[typ] = rate
		}
	}
	return nil
}

// 同じユーザーは1回だけ引く。見つからなければnilのまま
func (l *Loader) attachUsers(ctx context.Context, orders Orders) error {
	if l.users == nil {
		return nil
	}
	cache := map[int64]*model.User{}
	for _, o := range orders.List() {
		if o.UserID == nil {
			continue
		}
		uid := *o.UserID
		u, ok := cache[uid]
		if !ok {
			var err error
			u, err = l.users.FindByID(ctx, uid)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("order %d user %d: %w", o.ID, uid, err)
			}
			if err != nil {
				l.log.Debug("order user not found", "order_id", o.ID, "user_id", uid)
				u = nil
			}
			cache[uid] = u
		}
		o.User = u
	}
	return nil
}

// サブエンティティは注文IDでまとめて読み、注文ごとに振り分ける
func (l *Loader) attachEntities(ctx context.Context, orders Orders, ids []int64) error {
	e := l.Entities()

	addresses, err := e.Addresses.ByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	items, err := e.Items.ByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	payments, err := e.Payments.ByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	notes, err := e.Notes.ByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	dispatches, err := e.Dispatches.ByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := map[int64]*model.Payment{}
	for _, ps := range payments {
		for _, p := range ps {
			known[p.ID] = p
		}
	}
	refunds, err := e.Refunds.byOrderIDs(ctx, ids, known)
	if err != nil {
		return err
	}

	for _, id := range ids {
		o, _ := orders.Get(id)
		o.Addresses = addresses[id]
		if o.Addresses == nil {
			o.Addresses = model.Addresses{}
		}
		for _, a := range o.Addresses {
			a.Order = o
		}
		o.Items = forOrder(items, id)
		for _, it := range o.Items {
			it.Order = o
		}
		o.Payments = forOrder(payments, id)
		for _, p := range o.Payments {
			p.Order = o
		}
		o.Notes = forOrder(notes, id)
		for _, n := range o.Notes {
			n.Order = o
		}
		o.Dispatches = forOrder(dispatches, id)
		for _, d := range o.Dispatches {
			d.Order = o
		}
		o.Refunds = forOrder(refunds, id)
		for _, r := range o.Refunds {
			r.Order = o
		}
	}
	return nil
}
