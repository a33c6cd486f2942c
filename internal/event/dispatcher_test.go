package event

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/infra/db/dbtest"
	"commerce/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Order(t *testing.T) {
	d := NewDispatcher(logger.Nop())
	var calls []string
	rec := func(name string) Listener {
		return ListenerFunc(func(ctx context.Context, ev *EntityEvent) error {
			calls = append(calls, name)
			return nil
		})
	}
	d.Subscribe(EntityCreateEnd, 0, rec("a"))
	d.Subscribe(EntityCreateEnd, 10, rec("b"))
	d.Subscribe(EntityCreateEnd, 0, rec("c"))
	d.Subscribe("other", 0, rec("x"))

	require.NoError(t, d.Dispatch(context.Background(), EntityCreateEnd, NewEntityEvent(nil, nil)))
	assert.Equal(t, []string{"b", "a", "c"}, calls)
	assert.Equal(t, 3, d.Listeners(EntityCreateEnd))
}

func TestDispatcher_SetEntityAndStop(t *testing.T) {
	d := NewDispatcher(nil)
	boom := errors.New("boom")
	reached := false

	d.Subscribe(EntityCreateEnd, 2, ListenerFunc(func(ctx context.Context, ev *EntityEvent) error {
		r := *ev.Entity().(*model.Refund)
		r.Reason = "replaced"
		ev.SetEntity(&r)
		return nil
	}))
	d.Subscribe(EntityCreateEnd, 1, ListenerFunc(func(ctx context.Context, ev *EntityEvent) error {
		return boom
	}))
	d.Subscribe(EntityCreateEnd, 0, ListenerFunc(func(ctx context.Context, ev *EntityEvent) error {
		reached = true
		return nil
	}))

	orig := &model.Refund{Reason: "original"}
	ev := NewEntityEvent(orig, nil)
	err := d.Dispatch(context.Background(), EntityCreateEnd, ev)
	assert.ErrorIs(t, err, boom)
	assert.False(t, reached)
	assert.Equal(t, "replaced", ev.Entity().(*model.Refund).Reason)
	assert.Equal(t, "original", orig.Reason)
}

func TestAuditListener_EnqueuesWithPlaceholder(t *testing.T) {
	rec := dbtest.NewRecorder()
	rec.NextID = 70
	tx := db.NewTransaction(rec)

	v, err := tx.AddInsert("refund", "INSERT INTO order_refund (order_id) VALUES (?) RETURNING refund_id", int64(5))
	require.NoError(t, err)
	actor := int64(9)
	r := &model.Refund{IDVar: v, OrderID: 5, Amount: 10}
	r.Authorship.CreatedBy = &actor

	l := NewAuditListener(func() time.Time { return time.Unix(1000, 0) })
	require.NoError(t, l.Handle(context.Background(), NewEntityEvent(r, tx)))
	require.Equal(t, 2, tx.Len())

	require.NoError(t, tx.Commit(context.Background()))
	writes := rec.Writes()
	require.Len(t, writes, 2)
	assert.True(t, strings.HasPrefix(writes[1].SQL, "INSERT INTO audit_log"))
	args := writes[1].Args
	assert.Equal(t, &actor, args[0])
	assert.Equal(t, "CREATE_ENTITY", args[1])
	assert.Equal(t, "refund", args[2])
	assert.Equal(t, int64(70), args[3])
	assert.Equal(t, int64(5), args[4])
	assert.Contains(t, args[5], `"amount":10`)
	assert.Equal(t, int64(1000), args[6])
}

func TestAuditListener_IgnoresOther(t *testing.T) {
	tx := db.NewTransaction(dbtest.NewRecorder())
	l := NewAuditListener(nil)
	require.NoError(t, l.Handle(context.Background(), NewEntityEvent("not an entity", tx)))
	require.NoError(t, l.Handle(context.Background(), NewEntityEvent(&model.Note{}, nil)))
	assert.Equal(t, 0, tx.Len())
}
