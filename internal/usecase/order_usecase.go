package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"commerce/internal/domain/model"
	"commerce/internal/logger"
	"commerce/internal/method"
	"commerce/internal/order"
	repo "commerce/internal/repository"
	"commerce/internal/status"
)

// OrderLoader は注文集約の読み込み（*order.Loader）
type OrderLoader interface {
	ByID(ctx context.Context, id int64) (*model.Order, error)
	ByUser(ctx context.Context, userID int64) (order.Orders, error)
	ByStatus(ctx context.Context, codes []status.Code, r order.Range) (order.Orders, error)
	ByCurrentItemStatus(ctx context.Context, codes []status.Code) (order.Orders, error)
	ByTrackingCode(ctx context.Context, code string) (order.Orders, error)
	BySlice(ctx context.Context, offset, limit int) (order.Orders, error)
	Count(ctx context.Context, codes ...status.Code) (int64, error)
}

// RefundCreator は返金の作成（*order.RefundCreate）
var _ OrderLoader = (*order.Loader)(nil)

type RefundCreator interface {
	Create(ctx context.Context, r *model.Refund) (*model.Refund, error)
}

var _ RefundCreator = (*order.RefundCreate)(nil)

type Clock interface {
	Now() time.Time
}

type OrderUsecase struct {
	orders    OrderLoader
	refunds   RefundCreator
	methods   *method.Collection
	auditRepo repo.AuditLogRepository
	clock     Clock
	log       *logger.Logger
}

func NewOrderUsecase(orders OrderLoader, refunds RefundCreator, methods *method.Collection, auditRepo repo.AuditLogRepository, clock Clock, log *logger.Logger) *OrderUsecase {
	return &OrderUsecase{
		orders:    orders,
		refunds:   refunds,
		methods:   methods,
		auditRepo: auditRepo,
		clock:     clock,
		log:       logger.OrNop(log),
	}
}

// 一覧の絞り込み（どれか1つ。無ければIDの順）
type ListOrdersInput struct {
	Statuses     []status.Code
	ItemStatuses []status.Code
	UserID       *int64
	TrackingCode string
	Page         int
	Limit        int
}

type ListOrdersOutput struct {
	Orders []*model.Order `json:"orders"`
	// 件数がわかる絞り込みのときだけ
	Total *int64 `json:"total,omitempty"`
}

type CreateRefundInput struct {
	PaymentID *int64
	ReturnID  *int64
	Method    string
	Amount    float64
	Reason    string
	Reference string
}

// 注文を1件取得
func (u *OrderUsecase) Get(ctx context.Context, id int64) (*model.Order, error) {
	if id <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := u.orders.ByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return o, nil
}

// 注文一覧
func (u *OrderUsecase) List(ctx context.Context, in ListOrdersInput) (ListOrdersOutput, error) {
	empty := ListOrdersOutput{Orders: []*model.Order{}}

	// page/limitの最低限チェック
	if in.Page < 1 {
		return empty, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return empty, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	r := order.Range{Offset: (in.Page - 1) * in.Limit, Limit: in.Limit}

	var (
		orders order.Orders
		total  *int64
		paged  = true
		err    error
	)
	switch {
	case strings.TrimSpace(in.TrackingCode) != "":
		orders, err = u.orders.ByTrackingCode(ctx, strings.TrimSpace(in.TrackingCode))
		paged = false
	case in.UserID != nil:
		orders, err = u.orders.ByUser(ctx, *in.UserID)
		paged = false
	case len(in.ItemStatuses) > 0:
		orders, err = u.orders.ByCurrentItemStatus(ctx, in.ItemStatuses)
		paged = false
	case len(in.Statuses) > 0:
		orders, err = u.orders.ByStatus(ctx, in.Statuses, r)
		if err == nil {
			total, err = u.count(ctx, in.Statuses...)
		}
	default:
		orders, err = u.orders.BySlice(ctx, r.Offset, r.Limit)
		if err == nil {
			total, err = u.count(ctx)
		}
	}
	if err != nil {
		return empty, mapError(err)
	}
	if !paged {
		// 全件で返るものはここでページを切る
		return window(orders.List(), r), nil
	}
	return ListOrdersOutput{Orders: orders.List(), Total: total}, nil
}

func window(list []*model.Order, r order.Range) ListOrdersOutput {
	n := int64(len(list))
	start := min(r.Offset, len(list))
	end := min(start+r.Limit, len(list))
	return ListOrdersOutput{Orders: list[start:end], Total: &n}
}

func (u *OrderUsecase) count(ctx context.Context, codes ...status.Code) (*int64, error) {
	n, err := u.orders.Count(ctx, codes...)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// 返金を作成する。支払いは同じ注文のものだけ指定できる
func (u *OrderUsecase) CreateRefund(ctx context.Context, actorUserID, orderID int64, in CreateRefundInput) (*model.Refund, error) {
	if actorUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.ByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}

	r := &model.Refund{
		Order:     o,
		OrderID:   o.ID,
		ReturnID:  in.ReturnID,
		Amount:    in.Amount,
		Reason:    strings.TrimSpace(in.Reason),
		Reference: strings.TrimSpace(in.Reference),
	}
	if in.PaymentID != nil {
		p, ok := o.PaymentByID(*in.PaymentID)
		if !ok {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid payment_id")
		}
		r.Payment = p
	}
	if name := strings.TrimSpace(in.Method); name != "" {
		m, err := u.methods.Get(name)
		if err != nil {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid method")
		}
		r.Method = m
	}
	// 返金額は支払い済みの範囲まで
	if r.Payment != nil && in.Amount > r.Payment.Amount {
		return nil, NewHTTPError(http.StatusBadRequest, "amount exceeds payment")
	}

	actor := actorUserID
	if err := r.Authorship.Create(u.clock.Now().UTC().Truncate(time.Second), &actor); err != nil {
		return nil, mapError(err)
	}

	out, err := u.refunds.Create(ctx, r)
	if err != nil {
		u.log.Warn("refund create failed", "order_id", orderID, "actor", actorUserID, "err", err)
		return nil, mapError(err)
	}
	u.log.Info("refund created", "order_id", orderID, "refund_id", out.ID, "actor", actorUserID)
	return out, nil
}

// 注文の監査ログ（新しい順）
func (u *OrderUsecase) AuditLogs(ctx context.Context, orderID int64, limit int) ([]model.AuditLog, error) {
	if orderID <= 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{OrderID: &orderID, Limit: limit})
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
