package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/validator"
)

const insertAddress = `INSERT INTO order_address
	(order_id, type, name, line_1, line_2, line_3, line_4, town, state_id, state,
	 postcode, country, country_id, telephone, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING address_id`

// AddressCreate は住所を追加する（既存の住所は書き換えない）
type AddressCreate struct {
	c         creator
	addresses AddressLoader
}

func NewAddressCreate(exec db.Executor, addresses AddressLoader, events EventDispatcher, opts ...CreateOption) *AddressCreate {
	return &AddressCreate{c: newCreator(exec, events, opts), addresses: addresses}
}

func (p *AddressCreate) WithTransaction(tx *db.Transaction) *AddressCreate {
	c := *p
	c.c.tx = tx
	return &c
}

func (p *AddressCreate) Create(ctx context.Context, a *model.Address) (*model.Address, error) {
	return create(ctx, p.c, a, createSteps[model.Address]{
		kind:       "address",
		authorship: func(a *model.Address) *model.Authorship { return &a.Authorship },
		validate:   validator.ValidateAddress,
		enqueue: func(tx *db.Transaction, a *model.Address) (db.IDVar, error) {
			return tx.AddInsert("address", insertAddress,
				a.OrderID, string(a.Type), a.Name,
				a.Lines[0], a.Lines[1], a.Lines[2], a.Lines[3],
				a.Town, a.StateID, a.State, a.Postcode, a.Country, a.CountryID, a.Telephone,
				a.Authorship.CreatedAt.Unix(), a.Authorship.CreatedBy)
		},
		bind:   func(a *model.Address, v db.IDVar) { a.IDVar = v },
		reload: p.addresses.ByID,
	})
}
