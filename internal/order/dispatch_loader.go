package order

import (
	"context"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/method"
)

func dispatchTable(methods *method.Collection) table[model.Dispatch] {
	return table[model.Dispatch]{
		name:  "order_dispatch",
		pk:    "dispatch_id",
		newFn: func() *model.Dispatch { return &model.Dispatch{} },
		fields: append([]field[model.Dispatch]{
			int64Field("dispatch_id", func(d *model.Dispatch) *int64 { return &d.ID }),
			int64Field("order_id", func(d *model.Dispatch) *int64 { return &d.OrderID }),
			mapped("method", methodOf(methods), func(d *model.Dispatch) *method.Method { return &d.Method }),
			nullStringField("code", func(d *model.Dispatch) **string { return &d.Code }),
			moneyField("cost", func(d *model.Dispatch) *float64 { return &d.Cost }),
			int64Field("weight_grams", func(d *model.Dispatch) *int64 { return &d.Weight }),
			nullUnixField("shipped_at", func(d *model.Dispatch) **time.Time { return &d.ShippedAt }),
			nullInt64Field("shipped_by", func(d *model.Dispatch) **int64 { return &d.ShippedBy }),
		}, authorshipFields(func(d *model.Dispatch) *model.Authorship { return &d.Authorship }, true)...),
		id:      func(d *model.Dispatch) int64 { return d.ID },
		orderID: func(d *model.Dispatch) int64 { return d.OrderID },
	}
}

// DispatchLoader は注文の発送を読み込む。
type DispatchLoader struct {
	b base[model.Dispatch]
}

func NewDispatchLoader(q db.Query, methods *method.Collection, log *logger.Logger) DispatchLoader {
	return DispatchLoader{b: base[model.Dispatch]{q: q, log: logger.OrNop(log), t: dispatchTable(methods)}}
}

func (l DispatchLoader) IncludeDeleted(v bool) DispatchLoader {
	l.b.includeDeleted = v
	return l
}

func (l DispatchLoader) DeletedIncluded() bool { return l.b.includeDeleted }

func (l DispatchLoader) ByID(ctx context.Context, id int64) (*model.Dispatch, error) {
	ds, err := l.b.byIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return first(ds, id)
}

func (l DispatchLoader) ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Dispatch, error) {
	ds, err := l.b.byIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	return indexByID(ds, l.b.t.id), nil
}

func (l DispatchLoader) ByOrderID(ctx context.Context, orderID int64) ([]*model.Dispatch, error) {
	return l.b.byOrderIDs(ctx, uniqueIDs([]int64{orderID}))
}

func (l DispatchLoader) ByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*model.Dispatch, error) {
	ids := uniqueIDs(orderIDs)
	ds, err := l.b.byOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return groupByOrder(ids, ds, l.b.t.orderID), nil
}

// ByCode は追跡番号で引く。
func (l DispatchLoader) ByCode(ctx context.Context, code string) ([]*model.Dispatch, error) {
	return l.b.t.rows(ctx, l.b.q, l.b.includeDeleted, "order_dispatch.code = ?", code)
}
