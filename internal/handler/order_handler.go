package handler

import (
	"net/http"
	"strconv"

	"commerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 操作ユーザーのヘッダー（無ければ設定の既定ユーザー）
const HeaderUserID = "X-User-ID"

type RefundCreateRequest struct {
	PaymentID *int64  `json:"payment_id"`
	ReturnID  *int64  `json:"return_id"`
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
	Reference string  `json:"reference"`
}

// /orders の運用API
type OrderHandler struct {
	uc           *usecase.OrderUsecase
	defaultActor int64
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase, defaultActor int64) *OrderHandler {
	return &OrderHandler{uc: uc, defaultActor: defaultActor}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/orders", h.list)
	e.GET("/orders/:id", h.detail)
	e.GET("/orders/:id/audit-logs", h.auditLogs)
	e.POST("/orders/:id/refunds", h.createRefund)
}

func (h *OrderHandler) list(c echo.Context) error {
	page, ok := intQuery(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := intQuery(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	statuses, ok := codesQuery(c, "status")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
	}
	itemStatuses, ok := codesQuery(c, "item_status")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item_status"})
	}

	var userID *int64
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
		}
		userID = &id
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListOrdersInput{
		Statuses:     statuses,
		ItemStatuses: itemStatuses,
		UserID:       userID,
		TrackingCode: c.QueryParam("tracking_code"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	o, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) auditLogs(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	limit, ok := intQuery(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	logs, err := h.uc.AuditLogs(c.Request().Context(), id, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *OrderHandler) createRefund(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req RefundCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actor, ok := h.actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	r, err := h.uc.CreateRefund(c.Request().Context(), actor, orderID, usecase.CreateRefundInput{
		PaymentID: req.PaymentID,
		ReturnID:  req.ReturnID,
		Method:    req.Method,
		Amount:    req.Amount,
		Reason:    req.Reason,
		Reference: req.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *OrderHandler) actor(c echo.Context) (int64, bool) {
	v := c.Request().Header.Get(HeaderUserID)
	if v == "" {
		return h.defaultActor, h.defaultActor > 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
