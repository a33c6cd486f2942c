package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"commerce/internal/event"
	"commerce/internal/handler"
	"commerce/internal/infra/db"
	"commerce/internal/infra/db/dbtest"
	infraRepo "commerce/internal/infra/repository"
	"commerce/internal/logger"
	"commerce/internal/method"
	"commerce/internal/order"
	"commerce/internal/status"
	"commerce/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type clock struct{}

func (clock) Now() time.Time { return time.Unix(1_700_000_000, 0) }

func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	gdb, exec := dbtest.Executor(t)
	log := logger.Nop()

	cfg := order.EntityConfig{
		ItemStatuses:    status.ItemCatalog(),
		Catalog:         infraRepo.NewCatalogGormRepository(gdb),
		PaymentMethods:  method.Payments(),
		DispatchMethods: method.Dispatches(),
		RefundMethods:   method.Refunds(),
	}
	loader := order.NewLoader(exec, infraRepo.NewUserGormRepository(gdb), status.OrderCatalog(), status.ItemCatalog(),
		order.NewEntities(exec, cfg, log), log)

	events := event.NewDispatcher(log)
	events.Subscribe(event.EntityCreateEnd, 0, event.NewAuditListener(clock{}.Now))
	refunds := order.NewRefundCreate(exec, loader.Entities().Refunds, events, order.WithLogger(log))

	uc := usecase.NewOrderUsecase(loader, refunds, method.Refunds(), infraRepo.NewAuditLogGormRepository(gdb), clock{}, log)
	return New(log, handler.NewOrderHandler(uc, 1)), gdb
}

func seed(t *testing.T, gdb *gorm.DB) (orderID, paymentID int64) {
	t.Helper()
	o := &db.OrderSummaryRow{CurrencyID: "GBP", ConversionRate: 1, TotalGross: 30, Taxable: true, CreatedAt: 100}
	dbtest.Insert(t, gdb, o)
	p := &db.OrderPaymentRow{OrderID: o.OrderID, Method: "card", Amount: 30, CreatedAt: 100}
	dbtest.Insert(t, gdb,
		&db.OrderStatusRow{OrderID: o.OrderID, StatusCode: int(status.AwaitingDispatch), CreatedAt: 100},
		p,
	)
	return o.OrderID, p.PaymentID
}

func do(e *echo.Echo, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_OrderRoutes(t *testing.T) {
	e, gdb := newTestServer(t)
	oid, _ := seed(t, gdb)

	rec := do(e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/orders/"+jsonNumber(oid), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		ID     int64 `json:"id"`
		Status struct {
			Code int `json:"code"`
		} `json:"status"`
		Payments []struct {
			ID int64 `json:"id"`
		} `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, oid, got.ID)
	require.Len(t, got.Payments, 1)

	rec = do(e, http.MethodGet, "/orders/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/orders/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/orders?status=0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Orders []struct {
			ID int64 `json:"id"`
		} `json:"orders"`
		Total *int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Orders, 1)
	require.NotNil(t, list.Total)
	assert.Equal(t, int64(1), *list.Total)

	rec = do(e, http.MethodGet, "/orders?status=12345", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/orders?status=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateRefund(t *testing.T) {
	e, gdb := newTestServer(t)
	oid, pid := seed(t, gdb)
	path := "/orders/" + jsonNumber(oid) + "/refunds"

	rec := do(e, http.MethodPost, path, `{"payment_id":`+jsonNumber(pid)+`,"amount":0}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount must be greater than 0")

	rec = do(e, http.MethodPost, path, `{"amount":1}`, map[string]string{handler.HeaderUserID: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, path, `{"payment_id":`+jsonNumber(pid)+`,"method":"card","amount":7.5,"reason":"late"}`,
		map[string]string{handler.HeaderUserID: "42"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var refund struct {
		ID      int64   `json:"id"`
		Amount  float64 `json:"amount"`
		Payment struct {
			ID int64 `json:"id"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refund))
	assert.Positive(t, refund.ID)
	assert.Equal(t, 7.5, refund.Amount)
	assert.Equal(t, pid, refund.Payment.ID)

	//監査ログも同じトランザクションで残る
	rec = do(e, http.MethodGet, "/orders/"+jsonNumber(oid)+"/audit-logs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []struct {
		ActorUserID  *int64 `json:"actor_user_id"`
		ResourceType string `json:"resource_type"`
		ResourceID   int64  `json:"resource_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "refund", logs[0].ResourceType)
	assert.Equal(t, refund.ID, logs[0].ResourceID)
	require.NotNil(t, logs[0].ActorUserID)
	assert.Equal(t, int64(42), *logs[0].ActorUserID)
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
