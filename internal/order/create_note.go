package order

import (
	"context"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/validator"
)

const insertNote = `INSERT INTO order_note
	(order_id, note, customer_notified, raised_from, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?) RETURNING note_id`

// NoteCreate は注文メモを作成する。
type NoteCreate struct {
	c     creator
	notes NoteLoader
}

func NewNoteCreate(exec db.Executor, notes NoteLoader, events EventDispatcher, opts ...CreateOption) *NoteCreate {
	return &NoteCreate{c: newCreator(exec, events, opts), notes: notes}
}

func (p *NoteCreate) WithTransaction(tx *db.Transaction) *NoteCreate {
	c := *p
	c.c.tx = tx
	return &c
}

func (p *NoteCreate) Create(ctx context.Context, n *model.Note) (*model.Note, error) {
	return create(ctx, p.c, n, createSteps[model.Note]{
		kind:       "note",
		authorship: func(n *model.Note) *model.Authorship { return &n.Authorship },
		validate:   validator.ValidateNote,
		enqueue: func(tx *db.Transaction, n *model.Note) (db.IDVar, error) {
			return tx.AddInsert("note", insertNote,
				n.OrderID, n.Note, n.CustomerNotified, n.RaisedFrom,
				n.Authorship.CreatedAt.Unix(), n.Authorship.CreatedBy)
		},
		bind:   func(n *model.Note, v db.IDVar) { n.IDVar = v },
		reload: p.notes.ByID,
	})
}
