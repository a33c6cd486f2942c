package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/method"
	"commerce/internal/order"
	repo "commerce/internal/repository"
	"commerce/internal/status"
	"commerce/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type OrderLoaderMock struct{ mock.Mock }

func (m *OrderLoaderMock) ByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *OrderLoaderMock) orders(args mock.Arguments) (order.Orders, error) {
	o, _ := args.Get(0).(order.Orders)
	return o, args.Error(1)
}

func (m *OrderLoaderMock) ByUser(ctx context.Context, userID int64) (order.Orders, error) {
	return m.orders(m.Called(ctx, userID))
}

func (m *OrderLoaderMock) ByStatus(ctx context.Context, codes []status.Code, r order.Range) (order.Orders, error) {
	return m.orders(m.Called(ctx, codes, r))
}

func (m *OrderLoaderMock) ByCurrentItemStatus(ctx context.Context, codes []status.Code) (order.Orders, error) {
	return m.orders(m.Called(ctx, codes))
}

func (m *OrderLoaderMock) ByTrackingCode(ctx context.Context, code string) (order.Orders, error) {
	return m.orders(m.Called(ctx, code))
}

func (m *OrderLoaderMock) BySlice(ctx context.Context, offset, limit int) (order.Orders, error) {
	return m.orders(m.Called(ctx, offset, limit))
}

func (m *OrderLoaderMock) Count(ctx context.Context, codes ...status.Code) (int64, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(int64), args.Error(1)
}

type RefundCreatorMock struct{ mock.Mock }

func (m *RefundCreatorMock) Create(ctx context.Context, r *model.Refund) (*model.Refund, error) {
	args := m.Called(ctx, r)
	out, _ := args.Get(0).(*model.Refund)
	return out, args.Error(1)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newUsecase(orders *OrderLoaderMock, refunds *RefundCreatorMock, audit *AuditLogRepoMock) *OrderUsecase {
	return NewOrderUsecase(orders, refunds, method.Refunds(), audit,
		fixedClock{time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}, nil)
}

func requireHTTPStatus(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, code, he.Status)
}

func orderWithPayment() *model.Order {
	o := model.NewOrder()
	o.ID = 5
	o.Payments = []*model.Payment{{ID: 9, OrderID: 5, Amount: 20}}
	return o
}

// =====================
// Tests
// =====================

func TestOrderUsecase_Get(t *testing.T) {
	orders := new(OrderLoaderMock)
	uc := newUsecase(orders, nil, nil)
	ctx := context.Background()

	_, err := uc.Get(ctx, 0)
	requireHTTPStatus(t, err, http.StatusBadRequest)

	orders.On("ByID", mock.Anything, int64(404)).Return(nil, order.ErrNotFound).Once()
	_, err = uc.Get(ctx, 404)
	requireHTTPStatus(t, err, http.StatusNotFound)

	orders.On("ByID", mock.Anything, int64(500)).Return(nil, errors.New("conn reset")).Once()
	_, err = uc.Get(ctx, 500)
	requireHTTPStatus(t, err, http.StatusInternalServerError)

	o := orderWithPayment()
	orders.On("ByID", mock.Anything, int64(5)).Return(o, nil).Once()
	got, err := uc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Same(t, o, got)

	orders.AssertExpectations(t)
}

func TestOrderUsecase_List(t *testing.T) {
	ctx := context.Background()
	a, b := model.NewOrder(), model.NewOrder()
	a.ID, b.ID = 1, 2

	t.Run("invalid paging", func(t *testing.T) {
		uc := newUsecase(new(OrderLoaderMock), nil, nil)
		_, err := uc.List(ctx, ListOrdersInput{Page: 0, Limit: 10})
		requireHTTPStatus(t, err, http.StatusBadRequest)
		out, err := uc.List(ctx, ListOrdersInput{Page: 1, Limit: 101})
		requireHTTPStatus(t, err, http.StatusBadRequest)
		assert.NotNil(t, out.Orders)
	})

	t.Run("by status with total", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		codes := []status.Code{status.AwaitingDispatch}
		orders.On("ByStatus", mock.Anything, codes, order.Range{Offset: 10, Limit: 10}).Return(order.NewOrders(b, a), nil).Once()
		orders.On("Count", mock.Anything, codes).Return(int64(12), nil).Once()

		out, err := newUsecase(orders, nil, nil).List(ctx, ListOrdersInput{Statuses: codes, Page: 2, Limit: 10})
		require.NoError(t, err)
		require.Len(t, out.Orders, 2)
		assert.Equal(t, int64(2), out.Orders[0].ID)
		require.NotNil(t, out.Total)
		assert.Equal(t, int64(12), *out.Total)
		orders.AssertExpectations(t)
	})

	t.Run("unknown status is bad request", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		codes := []status.Code{42}
		orders.On("ByStatus", mock.Anything, codes, mock.Anything).
			Return(order.Orders{}, errors.Join(order.ErrValidation, status.ErrUnknownStatus)).Once()

		_, err := newUsecase(orders, nil, nil).List(ctx, ListOrdersInput{Statuses: codes, Page: 1, Limit: 10})
		requireHTTPStatus(t, err, http.StatusBadRequest)
	})

	t.Run("tracking code wins", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		orders.On("ByTrackingCode", mock.Anything, "RM1").Return(order.NewOrders(a), nil).Once()

		uid := int64(3)
		out, err := newUsecase(orders, nil, nil).List(ctx, ListOrdersInput{TrackingCode: " RM1 ", UserID: &uid, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, out.Orders, 1)
		require.NotNil(t, out.Total)
		assert.Equal(t, int64(1), *out.Total)
		orders.AssertNotCalled(t, "ByUser", mock.Anything, mock.Anything)
	})

	t.Run("user orders are paged after loading", func(t *testing.T) {
		c := model.NewOrder()
		c.ID = 3
		orders := new(OrderLoaderMock)
		uid := int64(5)
		orders.On("ByUser", mock.Anything, uid).Return(order.NewOrders(c, b, a), nil).Twice()
		uc := newUsecase(orders, nil, nil)

		out, err := uc.List(ctx, ListOrdersInput{UserID: &uid, Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, out.Orders, 1)
		assert.Equal(t, int64(1), out.Orders[0].ID)
		require.NotNil(t, out.Total)
		assert.Equal(t, int64(3), *out.Total)

		//範囲外は空
		out, err = uc.List(ctx, ListOrdersInput{UserID: &uid, Page: 5, Limit: 2})
		require.NoError(t, err)
		assert.NotNil(t, out.Orders)
		assert.Empty(t, out.Orders)
		orders.AssertExpectations(t)
	})

	t.Run("default slice", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		orders.On("BySlice", mock.Anything, 0, 20).Return(order.NewOrders(), nil).Once()
		orders.On("Count", mock.Anything, []status.Code(nil)).Return(int64(0), nil).Once()

		out, err := newUsecase(orders, nil, nil).List(ctx, ListOrdersInput{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.NotNil(t, out.Orders)
		assert.Empty(t, out.Orders)
		orders.AssertExpectations(t)
	})
}

func TestOrderUsecase_CreateRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthorized", func(t *testing.T) {
		_, err := newUsecase(new(OrderLoaderMock), nil, nil).CreateRefund(ctx, 0, 5, CreateRefundInput{Amount: 1})
		requireHTTPStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("payment must belong to order", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		orders.On("ByID", mock.Anything, int64(5)).Return(orderWithPayment(), nil).Once()
		other := int64(99)

		refunds := new(RefundCreatorMock)
		_, err := newUsecase(orders, refunds, nil).CreateRefund(ctx, 1, 5, CreateRefundInput{PaymentID: &other, Amount: 1})
		requireHTTPStatus(t, err, http.StatusBadRequest)
		refunds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("amount exceeds payment", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		orders.On("ByID", mock.Anything, int64(5)).Return(orderWithPayment(), nil).Once()
		pid := int64(9)

		_, err := newUsecase(orders, new(RefundCreatorMock), nil).CreateRefund(ctx, 1, 5, CreateRefundInput{PaymentID: &pid, Amount: 50})
		requireHTTPStatus(t, err, http.StatusBadRequest)
	})

	t.Run("validation error from pipeline", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		orders.On("ByID", mock.Anything, int64(5)).Return(orderWithPayment(), nil).Once()
		refunds := new(RefundCreatorMock)
		refunds.On("Create", mock.Anything, mock.Anything).
			Return(nil, &validator.FieldError{Field: "amount", Message: "amount must be greater than 0"}).Once()

		_, err := newUsecase(orders, refunds, nil).CreateRefund(ctx, 1, 5, CreateRefundInput{Amount: 0})
		requireHTTPStatus(t, err, http.StatusBadRequest)
		he, _ := AsHTTPError(err)
		assert.Equal(t, "amount must be greater than 0", he.Message)
	})

	t.Run("created", func(t *testing.T) {
		o := orderWithPayment()
		orders := new(OrderLoaderMock)
		orders.On("ByID", mock.Anything, int64(5)).Return(o, nil).Once()

		refunds := new(RefundCreatorMock)
		refunds.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Refund) bool {
			return r.Order == o &&
				r.Payment == o.Payments[0] &&
				r.Method.Name == "card" &&
				r.Reason == "damaged" &&
				r.Authorship.CreatedBy != nil && *r.Authorship.CreatedBy == 7 &&
				r.Authorship.CreatedAt.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
		})).Return(&model.Refund{ID: 31, OrderID: 5, Amount: 10}, nil).Once()

		pid := int64(9)
		got, err := newUsecase(orders, refunds, nil).CreateRefund(ctx, 7, 5, CreateRefundInput{
			PaymentID: &pid, Method: "card", Amount: 10, Reason: " damaged ",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(31), got.ID)
		refunds.AssertExpectations(t)
	})

	t.Run("unknown method", func(t *testing.T) {
		orders := new(OrderLoaderMock)
		orders.On("ByID", mock.Anything, int64(5)).Return(orderWithPayment(), nil).Once()

		_, err := newUsecase(orders, new(RefundCreatorMock), nil).CreateRefund(ctx, 7, 5, CreateRefundInput{Method: "bitcoin", Amount: 1})
		requireHTTPStatus(t, err, http.StatusBadRequest)
	})
}

func TestOrderUsecase_AuditLogs(t *testing.T) {
	audit := new(AuditLogRepoMock)
	uc := newUsecase(nil, nil, audit)
	ctx := context.Background()

	oid := int64(5)
	audit.On("List", mock.Anything, repo.AuditLogFilter{OrderID: &oid, Limit: 20}).
		Return([]model.AuditLog{{ID: 1, OrderID: 5}}, nil).Once()

	logs, err := uc.AuditLogs(ctx, 5, 20)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = uc.AuditLogs(ctx, 0, 20)
	requireHTTPStatus(t, err, http.StatusBadRequest)
	audit.AssertExpectations(t)
}
