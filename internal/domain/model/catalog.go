package model

import (
	"context"
	"strings"
	"time"
)

// 商品（カタログ側）
type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	TaxRate     float64    `json:"tax_rate"`
	TaxStrategy string     `json:"tax_strategy"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// 単位のオプション（サイズ・色など）
type UnitOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// 商品の販売単位（リビジョン付き）
type Unit struct {
	ID         int64  `json:"id"`
	RevisionID int64  `json:"revision_id"`
	ProductID  int64  `json:"product_id"`
	SKU        string `json:"sku"`
	Barcode    string `json:"barcode"`
	Weight     int64  `json:"weight"`
	Visible    bool   `json:"visible"`

	Options []UnitOption `json:"options"`

	//価格種別 -> 通貨 -> 価格
	Prices map[string]map[string]float64 `json:"prices"`

	//在庫ロケーション -> 在庫数
	Stock map[string]int64 `json:"stock"`

	Product *Product `json:"product,omitempty"`
}

// Price は無ければ0
func (u *Unit) Price(typ, currencyID string) float64 {
	return u.Prices[typ][currencyID]
}

// OptionString はオプション値を ", " でつなぐ。
func (u *Unit) OptionString() string {
	vals := make([]string, 0, len(u.Options))
	for _, o := range u.Options {
		if o.Value != "" {
			vals = append(vals, o.Value)
		}
	}
	return strings.Join(vals, ", ")
}

// TotalStock は全ロケーションの在庫数
func (u *Unit) TotalStock() int64 {
	var n int64
	for _, s := range u.Stock {
		n += s
	}
	return n
}

// CatalogOptions はカタログ読み込み時の条件
type CatalogOptions struct {
	IncludeOutOfStock bool
	IncludeInvisible  bool
}

// 過去の注文は販売終了・非表示の商品も引けないといけない
var HistoricalCatalog = CatalogOptions{IncludeOutOfStock: true, IncludeInvisible: true}

// CatalogLoader は商品カタログの読み込み窓口
type CatalogLoader interface {
	UnitByID(ctx context.Context, id, revision int64, opts CatalogOptions) (*Unit, error)
	ProductByID(ctx context.Context, id int64, opts CatalogOptions) (*Product, error)
}

// 在庫ロケーション
type Location struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Locations は名前で引けるロケーション一覧
type Locations struct {
	byName map[string]Location
}

func NewLocations(ls ...Location) Locations {
	m := make(map[string]Location, len(ls))
	for _, l := range ls {
		m[l.Name] = l
	}
	return Locations{byName: m}
}

func (l Locations) Get(name string) (Location, bool) {
	loc, ok := l.byName[name]
	return loc, ok
}

func (l Locations) Len() int { return len(l.byName) }
