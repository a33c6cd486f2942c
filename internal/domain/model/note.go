package model

// 注文メモ
type Note struct {
	ID    int64 `json:"id"`
	IDVar IDVar `json:"-"`

	OrderID int64  `json:"order_id"`
	Order   *Order `json:"-"`

	Note             string `json:"note"`
	CustomerNotified bool   `json:"customer_notified"`
	RaisedFrom       string `json:"raised_from"`

	Authorship Authorship `json:"authorship"`
}
