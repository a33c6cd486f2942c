package model

import "sort"

type AddressType string

const (
	AddressDelivery AddressType = "delivery"
	AddressBilling  AddressType = "billing"
)

func (t AddressType) Valid() bool {
	return t == AddressDelivery || t == AddressBilling
}

// 注文の住所。追記のみで書き換えない
type Address struct {
	ID    int64 `json:"id"`
	IDVar IDVar `json:"-"`

	OrderID int64  `json:"order_id"`
	Order   *Order `json:"-"`

	Type AddressType `json:"type"`
	Name string      `json:"name"`

	//住所行（最大4行）
	Lines [4]string `json:"lines"`

	Town      string `json:"town"`
	StateID   string `json:"state_id"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	CountryID string `json:"country_id"`
	Telephone string `json:"telephone"`

	Authorship Authorship `json:"authorship"`
}

// Addresses は注文の住所一覧
type Addresses []*Address

// ByType はその種類で最も新しく作られた住所（同時刻なら主キーが大きい方）
func (as Addresses) ByType(t AddressType) (*Address, bool) {
	matched := make([]*Address, 0, len(as))
	for _, a := range as {
		if a != nil && a.Type == t {
			matched = append(matched, a)
		}
	}
	if len(matched) == 0 {
		return nil, false
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ai, aj := matched[i].Authorship.CreatedAt, matched[j].Authorship.CreatedAt
		if !ai.Equal(aj) {
			return ai.Before(aj)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched[len(matched)-1], true
}
