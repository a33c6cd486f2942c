package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/method"
	"commerce/internal/normalize"
)

func refundTable(methods *method.Collection) table[model.Refund] {
	return table[model.Refund]{
		name:  "order_refund",
		pk:    "refund_id",
		newFn: func() *model.Refund { return &model.Refund{} },
		fields: append([]field[model.Refund]{
			int64Field("refund_id", func(r *model.Refund) *int64 { return &r.ID }),
			int64Field("order_id", func(r *model.Refund) *int64 { return &r.OrderID }),
			//支払いはIDだけ持たせて後で解決する
			mapped("payment_id", paymentRef, func(r *model.Refund) **model.Payment { return &r.Payment }),
			nullInt64Field("return_id", func(r *model.Refund) **int64 { return &r.ReturnID }),
			mapped("method", methodOf(methods), func(r *model.Refund) *method.Method { return &r.Method }),
			moneyField("amount", func(r *model.Refund) *float64 { return &r.Amount }),
			stringField("reason", func(r *model.Refund) *string { return &r.Reason }),
			stringField("reference", func(r *model.Refund) *string { return &r.Reference }),
		}, authorshipFields(func(r *model.Refund) *model.Authorship { return &r.Authorship }, false)...),
		id:      func(r *model.Refund) int64 { return r.ID },
		orderID: func(r *model.Refund) int64 { return r.OrderID },
	}
}

func paymentRef(v any) (*model.Payment, error) {
	id, err := normalize.NullInt64(v)
	if err != nil || id == nil {
		return nil, err
	}
	return &model.Payment{ID: *id}, nil
}

// RefundLoader は注文の返金を読み込む。支払いは同じ設定のPaymentLoaderで解決する
type RefundLoader struct {
	b        base[model.Refund]
	payments PaymentLoader
}

func NewRefundLoader(q db.Query, payments PaymentLoader, methods *method.Collection, log *logger.Logger) RefundLoader {
	return RefundLoader{
		b:        base[model.Refund]{q: q, log: logger.OrNop(log), t: refundTable(methods)},
		payments: payments,
	}
}

// IncludeDeleted は支払いの読み込みにも同じ設定を渡す。
func (l RefundLoader) IncludeDeleted(v bool) RefundLoader {
	l.b.includeDeleted = v
	l.payments = l.payments.IncludeDeleted(v)
	return l
}

func (l RefundLoader) DeletedIncluded() bool { return l.b.includeDeleted }

func (l RefundLoader) ByID(ctx context.Context, id int64) (*model.Refund, error) {
	rs, err := l.b.byIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	r, err := first(rs, id)
	if err != nil {
		return nil, err
	}
	if err := l.resolvePayments(ctx, rs, nil); err != nil {
		return nil, err
	}
	return r, nil
}

func (l RefundLoader) ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Refund, error) {
	rs, err := l.b.byIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	if err := l.resolvePayments(ctx, rs, nil); err != nil {
		return nil, err
	}
	return indexByID(rs, l.b.t.id), nil
}

func (l RefundLoader) ByOrderID(ctx context.Context, orderID int64) ([]*model.Refund, error) {
	m, err := l.byOrderIDs(ctx, []int64{orderID}, nil)
	if err != nil {
		return nil, err
	}
	return forOrder(m, orderID), nil
}

func (l RefundLoader) ByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*model.Refund, error) {
	return l.byOrderIDs(ctx, orderIDs, nil)
}

// known は集約で読み込み済みの支払い（無いものだけ問い合わせる）
func (l RefundLoader) byOrderIDs(ctx context.Context, orderIDs []int64, known map[int64]*model.Payment) (map[int64][]*model.Refund, error) {
	ids := uniqueIDs(orderIDs)
	rs, err := l.b.byOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := l.resolvePayments(ctx, rs, known); err != nil {
		return nil, err
	}
	return groupByOrder(ids, rs, l.b.t.orderID), nil
}

func (l RefundLoader) resolvePayments(ctx context.Context, rs []*model.Refund, known map[int64]*model.Payment) error {
	missing := make([]int64, 0, len(rs))
	for _, r := range rs {
		if r.Payment == nil {
			continue
		}
		if p, ok := known[r.Payment.ID]; ok {
			r.Payment = p
			continue
		}
		missing = append(missing, r.Payment.ID)
	}
	if len(missing) == 0 {
		return nil
	}
	ps, err := l.payments.ByIDs(ctx, missing)
	if err != nil {
		return err
	}
	for _, r := range rs {
		if r.Payment == nil {
			continue
		}
		if p, ok := ps[r.Payment.ID]; ok {
			r.Payment = p
		}
	}
	return nil
}
