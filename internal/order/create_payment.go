package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/normalize"
	"commerce/internal/validator"
)

const insertPayment = `INSERT INTO order_payment
	(order_id, method, amount, reference, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?) RETURNING payment_id`

// PaymentCreate は支払いを作成する。
type PaymentCreate struct {
	c        creator
	payments PaymentLoader
}

func NewPaymentCreate(exec db.Executor, payments PaymentLoader, events EventDispatcher, opts ...CreateOption) *PaymentCreate {
	return &PaymentCreate{c: newCreator(exec, events, opts), payments: payments}
}

func (p *PaymentCreate) WithTransaction(tx *db.Transaction) *PaymentCreate {
	c := *p
	c.c.tx = tx
	return &c
}

func (p *PaymentCreate) Create(ctx context.Context, pay *model.Payment) (*model.Payment, error) {
	return create(ctx, p.c, pay, createSteps[model.Payment]{
		kind:       "payment",
		authorship: func(p *model.Payment) *model.Authorship { return &p.Authorship },
		validate:   validator.ValidatePayment,
		enqueue: func(tx *db.Transaction, p *model.Payment) (db.IDVar, error) {
			return tx.AddInsert("payment", insertPayment,
				p.OrderID, p.Method.Name, normalize.Round(p.Amount, 2), p.Reference,
				p.Authorship.CreatedAt.Unix(), p.Authorship.CreatedBy)
		},
		bind:   func(p *model.Payment, v db.IDVar) { p.IDVar = v },
		reload: p.payments.ByID,
	})
}
