package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
)

var noteTable = table[model.Note]{
	name:  "order_note",
	pk:    "note_id",
	newFn: func() *model.Note { return &model.Note{} },
	fields: append([]field[model.Note]{
		int64Field("note_id", func(n *model.Note) *int64 { return &n.ID }),
		int64Field("order_id", func(n *model.Note) *int64 { return &n.OrderID }),
		stringField("note", func(n *model.Note) *string { return &n.Note }),
		boolField("customer_notified", func(n *model.Note) *bool { return &n.CustomerNotified }),
		stringField("raised_from", func(n *model.Note) *string { return &n.RaisedFrom }),
	}, authorshipFields(func(n *model.Note) *model.Authorship { return &n.Authorship }, false)...),
	id:      func(n *model.Note) int64 { return n.ID },
	orderID: func(n *model.Note) int64 { return n.OrderID },
}

// NoteLoader は注文メモを読み込む。
type NoteLoader struct {
	b base[model.Note]
}

func NewNoteLoader(q db.Query, log *logger.Logger) NoteLoader {
	return NoteLoader{b: base[model.Note]{q: q, log: logger.OrNop(log), t: noteTable}}
}

func (l NoteLoader) IncludeDeleted(v bool) NoteLoader {
	l.b.includeDeleted = v
	return l
}

func (l NoteLoader) DeletedIncluded() bool { return l.b.includeDeleted }

func (l NoteLoader) ByID(ctx context.Context, id int64) (*model.Note, error) {
	ns, err := l.b.byIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return first(ns, id)
}

func (l NoteLoader) ByIDs(ctx context.Context, ids []int64) (map[int64]*model.Note, error) {
	ns, err := l.b.byIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	return indexByID(ns, noteTable.id), nil
}

func (l NoteLoader) ByOrderID(ctx context.Context, orderID int64) ([]*model.Note, error) {
	return l.b.byOrderIDs(ctx, uniqueIDs([]int64{orderID}))
}

func (l NoteLoader) ByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*model.Note, error) {
	ids := uniqueIDs(orderIDs)
	ns, err := l.b.byOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return groupByOrder(ids, ns, noteTable.orderID), nil
}
