package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/normalize"
	"commerce/internal/validator"
)

const insertRefund = `INSERT INTO order_refund
	(order_id, payment_id, return_id, method, amount, reason, reference, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING refund_id`

// RefundCreate は返金をトランザクション内で作成する。
type RefundCreate struct {
	c       creator
	refunds RefundLoader
}

func NewRefundCreate(exec db.Executor, refunds RefundLoader, events EventDispatcher, opts ...CreateOption) *RefundCreate {
	return &RefundCreate{c: newCreator(exec, events, opts), refunds: refunds}
}

// WithTransaction は呼び出し元のトランザクションに積む（コミットは呼び出し元）
func (p *RefundCreate) WithTransaction(tx *db.Transaction) *RefundCreate {
	c := *p
	c.c.tx = tx
	return &c
}

func (p *RefundCreate) Create(ctx context.Context, r *model.Refund) (*model.Refund, error) {
	return create(ctx, p.c, r, createSteps[model.Refund]{
		kind:       "refund",
		authorship: func(r *model.Refund) *model.Authorship { return &r.Authorship },
		validate:   validator.ValidateRefund,
		enqueue: func(tx *db.Transaction, r *model.Refund) (db.IDVar, error) {
			var payment any
			if r.Payment != nil {
				payment = idOrVar(r.Payment.ID, r.Payment.IDVar)
			}
			return tx.AddInsert("refund", insertRefund,
				r.OrderID,
				payment,
				r.ReturnID,
				nullable(r.Method.Name),
				normalize.Round(r.Amount, 2),
				nullable(r.Reason),
				nullable(r.Reference),
				r.Authorship.CreatedAt.Unix(),
				r.Authorship.CreatedBy,
			)
		},
		bind:   func(r *model.Refund, v db.IDVar) { r.IDVar = v },
		reload: p.refunds.ByID,
	})
}
