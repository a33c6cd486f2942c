package model

import (
	"time"

	"commerce/internal/method"
)

// 発送
type Dispatch struct {
	ID    int64 `json:"id"`
	IDVar IDVar `json:"-"`

	OrderID int64  `json:"order_id"`
	Order   *Order `json:"-"`

	Method method.Method `json:"method"`
	//追跡番号（未発送ならnil）
	Code   *string `json:"code,omitempty"`
	Cost   float64 `json:"cost"`
	Weight int64   `json:"weight"`

	ShippedAt *time.Time `json:"shipped_at,omitempty"`
	ShippedBy *int64     `json:"shipped_by,omitempty"`

	Authorship Authorship `json:"authorship"`
}

func (d *Dispatch) IsShipped() bool { return d.ShippedAt != nil }
