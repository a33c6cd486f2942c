package order

import (
	"context"
	"testing"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/infra/db/dbtest"
	"commerce/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoader_ByID_Aggregate(t *testing.T) {
	gdb, exec := dbtest.Executor(t)
	ctx := context.Background()

	uid := int64(5)
	oid := seedOrderRow(t, gdb, seedOrder{userID: &uid, createdAt: 100, statuses: []db.OrderStatusRow{
		{StatusCode: int(status.AwaitingDispatch), CreatedAt: 100},
		{StatusCode: int(status.Processing), CreatedAt: 200},
	}})
	dbtest.Insert(t, gdb,
		&db.OrderShippingRow{OrderID: oid, Name: "standard", DisplayName: "Standard", ListPrice: 5, Net: 4.17, Tax: 0.83, TaxRate: 20, Gross: 5},
		&db.OrderShippingTaxRow{OrderID: oid, TaxType: "VAT", TaxRate: 20},
		&db.OrderMetadataRow{OrderID: oid, Key: "channel", Value: "web"},
		&db.OrderAddressRow{OrderID: oid, Type: "delivery", Line1: "1 Old St", Postcode: "N1", CountryID: "GB", CreatedAt: 1},
		&db.OrderAddressRow{OrderID: oid, Type: "delivery", Line1: "2 New St", Postcode: "N1", CountryID: "GB", CreatedAt: 2},
		&db.OrderPaymentRow{OrderID: oid, Method: "card", Amount: 30, Reference: "tx-1", CreatedAt: 100},
		&db.OrderNoteRow{OrderID: oid, Note: "leave at door", RaisedFrom: "checkout", CreatedAt: 100},
		&db.OrderDispatchRow{OrderID: oid, Method: "royal-mail", Code: dbtest.Ptr("RM123"), Cost: 3.5, CreatedAt: 150},
	)
	itemID := seedItem(t, gdb, oid, nil, db.OrderItemStatusRow{StatusCode: int(status.AwaitingDispatch), CreatedAt: 100})
	dbtest.Insert(t, gdb, &db.OrderItemPersonalisationRow{ItemID: itemID, Name: "engraving", Value: "JD"})

	var paymentID int64
	require.NoError(t, gdb.Table("order_payment").Select("payment_id").Where("order_id = ?", oid).Scan(&paymentID).Error)
	dbtest.Insert(t, gdb, &db.OrderRefundRow{OrderID: oid, PaymentID: &paymentID, Method: dbtest.Ptr("card"), Amount: 5, Reason: dbtest.Ptr("damaged"), CreatedAt: 300})

	users := new(UserLoaderMock)
	users.On("FindByID", mock.Anything, uid).Return(&model.User{ID: uid, Email: "buyer@example.com"}, nil).Once()

	o, err := newTestLoader(exec, users, nil).ByID(ctx, oid)
	require.NoError(t, err)

	assert.Equal(t, oid, o.ID)
	assert.Equal(t, "GBP", o.CurrencyID)
	assert.Equal(t, 30.0, o.TotalGross)
	assert.True(t, o.Taxable)
	require.NotNil(t, o.Status)
	assert.Equal(t, status.Processing, o.Status.Code)
	require.NotNil(t, o.User)
	assert.Equal(t, uid, o.User.ID)
	assert.Equal(t, "Standard", o.Shipping.DisplayName)
	assert.Equal(t, 4.17, o.Shipping.Net)
	assert.Equal(t, map[string]float64{"VAT": 20}, o.ShippingTaxes)
	assert.Equal(t, "web", o.Metadata["channel"])
	assert.Equal(t, int64(100), o.Authorship.CreatedAt.Unix())

	require.Len(t, o.Addresses, 2)
	a, ok := o.Addresses.ByType(model.AddressDelivery)
	require.True(t, ok)
	assert.Equal(t, "2 New St", a.Lines[0])
	assert.Same(t, o, a.Order)

	require.Len(t, o.Items, 1)
	it := o.Items[0]
	assert.Same(t, o, it.Order)
	assert.Equal(t, "Acme, Shirt, Red, L", it.Description())
	assert.Equal(t, "JD", it.Personalisation["engraving"])
	require.NotNil(t, it.StockLocation)
	assert.Equal(t, "Web", it.StockLocation.DisplayName)
	require.NotNil(t, it.Status)
	assert.Equal(t, status.AwaitingDispatch, it.Status.Code)
	assert.False(t, it.Authorship.UpdateEnabled())

	require.Len(t, o.Payments, 1)
	assert.Equal(t, "card", o.Payments[0].Method.Name)
	require.Len(t, o.Notes, 1)
	require.Len(t, o.Dispatches, 1)
	assert.Equal(t, "RM123", *o.Dispatches[0].Code)
	assert.Equal(t, "Royal Mail", o.Dispatches[0].Method.DisplayName)

	require.Len(t, o.Refunds, 1)
	//同じ集約の支払いを指す
	assert.Same(t, o.Payments[0], o.Refunds[0].Payment)
	assert.Equal(t, "damaged", o.Refunds[0].Reason)

	users.AssertExpectations(t)
}

func TestLoader_EmptyAndNotFound(t *testing.T) {
	ctx := context.Background()
	rec := dbtest.NewRecorder()
	l := newTestLoader(rec, nil, nil)

	orders, err := l.ByIDs(ctx, []int64{})
	require.NoError(t, err)
	assert.Equal(t, 0, orders.Len())
	assert.NotNil(t, orders.Map())
	assert.NotNil(t, orders.List())
	assert.Empty(t, rec.Calls)

	//1行も一致しない
	orders, err = l.ByUser(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, 0, orders.Len())
	assert.Len(t, rec.Calls, 1)

	_, err = l.ByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoader_SoftDelete(t *testing.T) {
	gdb, exec := dbtest.Executor(t)
	ctx := context.Background()

	live := seedOrderRow(t, gdb, seedOrder{createdAt: 100})
	gone := seedOrderRow(t, gdb, seedOrder{createdAt: 100, deletedAt: dbtest.Ptr(int64(200))})
	seedItem(t, gdb, live, nil)
	seedItem(t, gdb, live, dbtest.Ptr(int64(150)))

	l := newTestLoader(exec, nil, nil)

	orders, err := l.ByIDs(ctx, []int64{live, gone})
	require.NoError(t, err)
	assert.Equal(t, []int64{live}, orders.IDs())
	o, _ := orders.Get(live)
	assert.Len(t, o.Items, 1)

	_, err = l.ByID(ctx, gone)
	assert.ErrorIs(t, err, ErrNotFound)

	all := l.IncludeDeleted(true)
	orders, err = all.ByIDs(ctx, []int64{live, gone})
	require.NoError(t, err)
	assert.Equal(t, []int64{live, gone}, orders.IDs())
	o, _ = orders.Get(live)
	assert.Len(t, o.Items, 2)
	g, _ := orders.Get(gone)
	assert.True(t, g.Authorship.IsDeleted())

	//元のローダーは変わらない
	assert.False(t, l.DeletedIncluded())

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = all.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLoader_ByCurrentItemStatus_TieBreak(t *testing.T) {
	gdb, exec := dbtest.Executor(t)
	ctx := context.Background()

	o := seedOrderRow(t, gdb, seedOrder{createdAt: 10})
	seedItem(t, gdb, o, nil, db.OrderItemStatusRow{StatusCode: int(status.AwaitingDispatch), CreatedAt: 100})
	//同じ時刻の2件はコードの大きい方
	seedItem(t, gdb, o, nil,
		db.OrderItemStatusRow{StatusCode: int(status.Dispatched), CreatedAt: 100},
		db.OrderItemStatusRow{StatusCode: int(status.AwaitingDispatch), CreatedAt: 100},
	)
	seedItem(t, gdb, o, nil, db.OrderItemStatusRow{StatusCode: int(status.Dispatched), CreatedAt: 50})

	other := seedOrderRow(t, gdb, seedOrder{createdAt: 10})
	seedItem(t, gdb, other, nil,
		db.OrderItemStatusRow{StatusCode: int(status.Dispatched), CreatedAt: 50},
		db.OrderItemStatusRow{StatusCode: int(status.Received), CreatedAt: 60},
	)

	l := newTestLoader(exec, nil, nil)

	orders, err := l.ByCurrentItemStatus(ctx, []status.Code{status.Dispatched})
	require.NoError(t, err)
	assert.Equal(t, []int64{o}, orders.IDs())

	orders, err = l.ByCurrentItemStatus(ctx, []status.Code{status.AwaitingDispatch, status.Received})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{o, other}, orders.IDs())

	//読み込んだ明細でも同じ結果
	got, _ := orders.Get(o)
	dispatched := 0
	for _, it := range got.Items {
		if it.Status != nil && it.Status.Code == status.Dispatched {
			dispatched++
		}
	}
	assert.Equal(t, 2, dispatched)
}

func TestLoader_ByStatus(t *testing.T) {
	gdb, exec := dbtest.Executor(t)
	ctx := context.Background()

	first := seedOrderRow(t, gdb, seedOrder{createdAt: 100, statuses: []db.OrderStatusRow{{StatusCode: int(status.AwaitingDispatch), CreatedAt: 100}}})
	second := seedOrderRow(t, gdb, seedOrder{createdAt: 200, statuses: []db.OrderStatusRow{{StatusCode: int(status.AwaitingDispatch), CreatedAt: 200}}})
	third := seedOrderRow(t, gdb, seedOrder{createdAt: 300, statuses: []db.OrderStatusRow{{StatusCode: int(status.AwaitingDispatch), CreatedAt: 300}}})
	shipped := seedOrderRow(t, gdb, seedOrder{createdAt: 400, statuses: []db.OrderStatusRow{
		{StatusCode: int(status.AwaitingDispatch), CreatedAt: 400},
		{StatusCode: int(status.Dispatched), CreatedAt: 500},
	}})

	l := newTestLoader(exec, nil, nil)

	orders, err := l.ByStatus(ctx, []status.Code{status.AwaitingDispatch}, Range{})
	require.NoError(t, err)
	assert.Equal(t, []int64{third, second, first}, orders.IDs())

	orders, err = l.ByStatus(ctx, []status.Code{status.AwaitingDispatch}, Range{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{second}, orders.IDs())

	orders, err = l.ByStatus(ctx, []status.Code{status.AwaitingDispatch}, Range{Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{first}, orders.IDs())

	orders, err = l.ByStatus(ctx, []status.Code{status.Dispatched}, Range{})
	require.NoError(t, err)
	assert.Equal(t, []int64{shipped}, orders.IDs())

	n, err := l.Count(ctx, status.AwaitingDispatch)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestLoader_UnknownStatusFailsBeforeQuery(t *testing.T) {
	ctx := context.Background()
	rec := dbtest.NewRecorder()
	l := newTestLoader(rec, nil, nil)

	_, err := l.ByStatus(ctx, []status.Code{status.AwaitingDispatch, 12345}, Range{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, status.ErrUnknownStatus)

	//明細のカタログに処理中は無い
	_, err = l.ByCurrentItemStatus(ctx, []status.Code{status.Processing})
	assert.ErrorIs(t, err, status.ErrUnknownStatus)

	_, err = l.Count(ctx, 777)
	assert.ErrorIs(t, err, status.ErrUnknownStatus)

	assert.Empty(t, rec.Calls)
}

func TestLoader_ByTrackingCodeAndSlice(t *testing.T) {
	gdb, exec := dbtest.Executor(t)
	ctx := context.Background()

	a := seedOrderRow(t, gdb, seedOrder{createdAt: 1})
	b := seedOrderRow(t, gdb, seedOrder{createdAt: 2})
	c := seedOrderRow(t, gdb, seedOrder{createdAt: 3})
	dbtest.Insert(t, gdb,
		&db.OrderDispatchRow{OrderID: b, Method: "courier", Code: dbtest.Ptr("TRACK-1"), CreatedAt: 5},
		&db.OrderDispatchRow{OrderID: b, Method: "courier", Code: dbtest.Ptr("TRACK-1"), CreatedAt: 6},
	)

	l := newTestLoader(exec, nil, nil)

	orders, err := l.ByTrackingCode(ctx, "TRACK-1")
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, orders.IDs())

	orders, err = l.ByTrackingCode(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, 0, orders.Len())

	orders, err = l.BySlice(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{b, c}, orders.IDs())

	orders, err = l.BySlice(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, orders.IDs())
}

func TestLoader_EntitiesIncludeDeleted(t *testing.T) {
	l := newTestLoader(dbtest.NewRecorder(), nil, nil)

	before := l.Entities()
	assert.False(t, before.Items.DeletedIncluded())

	all := l.IncludeDeleted(true)
	after := all.Entities()

	//伝搬する
	assert.True(t, after.Addresses.DeletedIncluded())
	assert.True(t, after.Items.DeletedIncluded())
	assert.True(t, after.Items.OrderLoader().DeletedIncluded())
	assert.True(t, after.Payments.DeletedIncluded())
	assert.True(t, after.Notes.DeletedIncluded())
	assert.True(t, after.Dispatches.DeletedIncluded())
	assert.True(t, after.Refunds.DeletedIncluded())

	//先に取ったものは変わらない
	assert.False(t, before.Addresses.DeletedIncluded())
	assert.False(t, before.Items.DeletedIncluded())
	assert.False(t, before.Items.OrderLoader().DeletedIncluded())
	assert.False(t, before.Refunds.DeletedIncluded())
	assert.False(t, l.Entities().Items.DeletedIncluded())

	//サブローダー側の切り替えも注文ローダーに伝わる
	items := before.Items.IncludeDeleted(true)
	assert.True(t, items.OrderLoader().DeletedIncluded())
	assert.False(t, before.Items.OrderLoader().DeletedIncluded())
}

func TestItemLoader_ByID_OrderBackReference(t *testing.T) {
	gdb, exec := dbtest.Executor(t)
	ctx := context.Background()

	live := seedOrderRow(t, gdb, seedOrder{createdAt: 100})
	gone := seedOrderRow(t, gdb, seedOrder{createdAt: 100, deletedAt: dbtest.Ptr(int64(120))})
	liveItem := seedItem(t, gdb, live, nil)
	goneItem := seedItem(t, gdb, gone, nil)

	l := newTestLoader(exec, nil, nil)
	items := l.Entities().Items

	it, err := items.ByID(ctx, liveItem)
	require.NoError(t, err)
	require.NotNil(t, it.Order)
	assert.Equal(t, live, it.Order.ID)
	//注文側の明細一覧にも自分が入っている
	_, ok := it.Order.ItemByID(liveItem)
	assert.True(t, ok)

	//削除済みの注文は付かない
	it, err = items.ByID(ctx, goneItem)
	require.NoError(t, err)
	assert.Nil(t, it.Order)

	it, err = items.IncludeDeleted(true).ByID(ctx, goneItem)
	require.NoError(t, err)
	require.NotNil(t, it.Order)
	assert.Equal(t, gone, it.Order.ID)

	_, err = items.ByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
