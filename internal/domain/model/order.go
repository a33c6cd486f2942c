package model

import (
	"sort"

	"commerce/internal/status"
)

// 配送料金
type Shipping struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	ListPrice   float64 `json:"list_price"`
	Net         float64 `json:"net"`
	Discount    float64 `json:"discount"`
	Tax         float64 `json:"tax"`
	TaxRate     float64 `json:"tax_rate"`
	Gross       float64 `json:"gross"`
}

// Metadata は注文の任意 key -> value
type Metadata map[string]string

func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys は名前順
func (m Metadata) Keys() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// 注文（集約のルート）
type Order struct {
	ID int64 `json:"id"`

	UserID    *int64 `json:"user_id,omitempty"`
	User      *User  `json:"user,omitempty"`
	UserEmail string `json:"user_email"`

	CurrencyID     string  `json:"currency_id"`
	ConversionRate float64 `json:"conversion_rate"`

	ProductNet      float64 `json:"product_net"`
	ProductDiscount float64 `json:"product_discount"`
	ProductTax      float64 `json:"product_tax"`
	ProductGross    float64 `json:"product_gross"`
	TotalNet        float64 `json:"total_net"`
	TotalDiscount   float64 `json:"total_discount"`
	TotalTax        float64 `json:"total_tax"`
	TotalGross      float64 `json:"total_gross"`

	Shipping Shipping `json:"shipping"`
	Taxable  bool     `json:"taxable"`

	//履歴から求めた現在のステータス（履歴が無ければnil）
	Status *status.Status `json:"status,omitempty"`

	Authorship Authorship `json:"authorship"`

	Metadata      Metadata           `json:"metadata"`
	ShippingTaxes map[string]float64 `json:"shipping_taxes"`

	Addresses  Addresses   `json:"addresses"`
	Items      []*Item     `json:"items"`
	Payments   []*Payment  `json:"payments"`
	Notes      []*Note     `json:"notes"`
	Dispatches []*Dispatch `json:"dispatches"`
	Refunds    []*Refund   `json:"refunds"`
}

// NewOrder はコレクションを空で初期化した注文
func NewOrder() *Order {
	return &Order{
		Metadata:      Metadata{},
		ShippingTaxes: map[string]float64{},
		Addresses:     Addresses{},
		Items:         []*Item{},
		Payments:      []*Payment{},
		Notes:         []*Note{},
		Dispatches:    []*Dispatch{},
		Refunds:       []*Refund{},
	}
}

// ItemByID は注文内の明細
func (o *Order) ItemByID(id int64) (*Item, bool) {
	for _, it := range o.Items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// PaymentByID は注文内の支払い
func (o *Order) PaymentByID(id int64) (*Payment, bool) {
	for _, p := range o.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// RefundTotal は返金額の合計
func (o *Order) RefundTotal() float64 {
	var sum float64
	for _, r := range o.Refunds {
		sum += r.Amount
	}
	return sum
}
