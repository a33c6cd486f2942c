package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/method"
	"commerce/internal/normalize"
)

// 名前の列を手段に解決する
func methodOf(c *method.Collection) func(any) (method.Method, error) {
	return func(v any) (method.Method, error) {
		name, err := normalize.String(v)
		if err != nil || name == "" {
			return method.Method{}, err
		}
		return c.Get(name)
	}
}

func paymentTable(methods *method.Collection) table[model.Payment] {
	return table[model.Payment]{
		name:  "order_payment",
		pk:    "payment_id",
		newFn: func() *model.Payment { return &model.Payment{} },
		fields: append([]field[model.Payment]{
			int64Field("payment_id", func(p *model.Payment) *int64 { return &p.ID }),
			int64Field("order_id", func(p *model.Payment) *int64 { return &p.OrderID }),
			mapped("method", methodOf(methods), func(p *model.Payment) *method.Method { return &p.Method }),
			moneyField("amount", func(p *model.Payment) *float64 { return &p.Amount }),
			stringField("reference", func(p *model.Payment) *string { return &p.Reference }),
		}, authorshipFields(func(p *model.Payment) *model.Authorship { return &p.Authorship }, false)...),
		id:      func(p *model.Payment) int64 { return p.ID },
		orderID: func(p *model.Payment) int64 { return p.OrderID },
	}
}

// PaymentLoader は注文の支払いを読み込む。
type PaymentLoader struct {
	b base[model.Payment]
}

func NewPaymentLoader(q db.Query, methods *method.Collection, log *logger.Logger) PaymentLoader {
	return PaymentLoader{b: base[model.Payment]{q: q, log: logger.OrNop(log), t: paymentTable(methods)}}
}

func (l PaymentLoader) IncludeDeleted(v bool) PaymentLoader {
	l.b.includeDeleted = v
	return l
}

func (l PaymentLoader) DeletedIncluded() bool { return l.b.includeDeleted }

func (l PaymentLoader) ByID(ctx context.Context, id int64) (*model.Payment, error) {
	ps, err := l.b.byIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return first(ps, id)
}

func (l PaymentLoader) ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Payment, error) {
	ps, err := l.b.byIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	return indexByID(ps, l.b.t.id), nil
}

func (l PaymentLoader) ByOrderID(ctx context.Context, orderID int64) ([]*model.Payment, error) {
	return l.b.byOrderIDs(ctx, uniqueIDs([]int64{orderID}))
}

func (l PaymentLoader) ByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*model.Payment, error) {
	ids := uniqueIDs(orderIDs)
	ps, err := l.b.byOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return groupByOrder(ids, ps, l.b.t.orderID), nil
}
