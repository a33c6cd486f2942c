package model

import (
	"commerce/internal/method"
)

// 返金。金額は0より大きい
type Refund struct {
	ID    int64 `json:"id"`
	IDVar IDVar `json:"-"`

	OrderID int64  `json:"order_id"`
	Order   *Order `json:"-"`

	Payment   *Payment      `json:"payment,omitempty"`
	ReturnID  *int64        `json:"return_id,omitempty"`
	Method    method.Method `json:"method"`
	Amount    float64       `json:"amount"`
	Reason    string        `json:"reason"`
	Reference string        `json:"reference"`

	Authorship Authorship `json:"authorship"`
}
