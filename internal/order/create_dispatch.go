package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/normalize"
	"commerce/internal/validator"
)

const insertDispatch = `INSERT INTO order_dispatch
	(order_id, method, code, cost, weight_grams, shipped_at, shipped_by, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING dispatch_id`

// DispatchCreate は発送を作成する。
type DispatchCreate struct {
	c          creator
	dispatches DispatchLoader
}

func NewDispatchCreate(exec db.Executor, dispatches DispatchLoader, events EventDispatcher, opts ...CreateOption) *DispatchCreate {
	return &DispatchCreate{c: newCreator(exec, events, opts), dispatches: dispatches}
}

func (p *DispatchCreate) WithTransaction(tx *db.Transaction) *DispatchCreate {
	c := *p
	c.c.tx = tx
	return &c
}

func (p *DispatchCreate) Create(ctx context.Context, d *model.Dispatch) (*model.Dispatch, error) {
	return create(ctx, p.c, d, createSteps[model.Dispatch]{
		kind:       "dispatch",
		authorship: func(d *model.Dispatch) *model.Authorship { return &d.Authorship },
		validate:   validator.ValidateDispatch,
		enqueue: func(tx *db.Transaction, d *model.Dispatch) (db.IDVar, error) {
			var shippedAt any
			if d.ShippedAt != nil {
				shippedAt = d.ShippedAt.Unix()
			}
			return tx.AddInsert("dispatch", insertDispatch,
				d.OrderID, d.Method.Name, d.Code, normalize.Round(d.Cost, 2), d.Weight,
				shippedAt, d.ShippedBy,
				d.Authorship.CreatedAt.Unix(), d.Authorship.CreatedBy)
		},
		bind:   func(d *model.Dispatch, v db.IDVar) { d.IDVar = v },
		reload: p.dispatches.ByID,
	})
}
