package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/normalize"
)

func newAddress() *model.Address { return &model.Address{} }

var addressTable = table[model.Address]{
	name:  "order_address",
	pk:    "address_id",
	newFn: newAddress,
	fields: append([]field[model.Address]{
		int64Field("address_id", func(a *model.Address) *int64 { return &a.ID }),
		int64Field("order_id", func(a *model.Address) *int64 { return &a.OrderID }),
		mapped("type", addressType, func(a *model.Address) *model.AddressType { return &a.Type }),
		stringField("name", func(a *model.Address) *string { return &a.Name }),
		stringField("line_1", func(a *model.Address) *string { return &a.Lines[0] }),
		stringField("line_2", func(a *model.Address) *string { return &a.Lines[1] }),
		stringField("line_3", func(a *model.Address) *string { return &a.Lines[2] }),
		stringField("line_4", func(a *model.Address) *string { return &a.Lines[3] }),
		stringField("town", func(a *model.Address) *string { return &a.Town }),
		stringField("state_id", func(a *model.Address) *string { return &a.StateID }),
		stringField("state", func(a *model.Address) *string { return &a.State }),
		stringField("postcode", func(a *model.Address) *string { return &a.Postcode }),
		stringField("country", func(a *model.Address) *string { return &a.Country }),
		stringField("country_id", func(a *model.Address) *string { return &a.CountryID }),
		stringField("telephone", func(a *model.Address) *string { return &a.Telephone }),
	}, authorshipFields(func(a *model.Address) *model.Authorship { return &a.Authorship }, false)...),
	id:      func(a *model.Address) int64 { return a.ID },
	orderID: func(a *model.Address) int64 { return a.OrderID },
}

func addressType(v any) (model.AddressType, error) {
	s, err := normalize.String(v)
	return model.AddressType(s), err
}

// AddressLoader は注文の住所を読み込む。
type AddressLoader struct {
	b base[model.Address]
}

func NewAddressLoader(q db.Query, log *logger.Logger) AddressLoader {
	return AddressLoader{b: base[model.Address]{q: q, log: logger.OrNop(log), t: addressTable}}
}

// IncludeDeleted は削除済みも返すコピーを作る。
func (l AddressLoader) IncludeDeleted(v bool) AddressLoader {
	l.b.includeDeleted = v
	return l
}

func (l AddressLoader) DeletedIncluded() bool { return l.b.includeDeleted }

func (l AddressLoader) ByID(ctx context.Context, id int64) (*model.Address, error) {
	as, err := l.b.byIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return first(as, id)
}

func (l AddressLoader) ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Address, error) {
	as, err := l.b.byIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	return indexByID(as, addressTable.id), nil
}

func (l AddressLoader) ByOrderID(ctx context.Context, orderID int64) (model.Addresses, error) {
	as, err := l.b.byOrderIDs(ctx, uniqueIDs([]int64{orderID}))
	if err != nil {
		return nil, err
	}
	return model.Addresses(as), nil
}

func (l AddressLoader) ByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64]model.Addresses, error) {
	ids := uniqueIDs(orderIDs)
	as, err := l.b.byOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	grouped := groupByOrder(ids, as, addressTable.orderID)
	out := make(map[int64]model.Addresses, len(grouped))
	for id, g := range grouped {
		out[id] = model.Addresses(g)
	}
	return out, nil
}
