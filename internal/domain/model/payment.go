package model

import (
	"commerce/internal/method"
)

type Payment struct {
	ID    int64 `json:"id"`
	IDVar IDVar `json:"-"`

	OrderID int64  `json:"order_id"`
	Order   *Order `json:"-"`

	Method    method.Method `json:"method"`
	Amount    float64       `json:"amount"`
	Reference string        `json:"reference"`

	Authorship Authorship `json:"authorship"`
}
