package model

import (
	"context"
	"math"
	"strings"

	"commerce/internal/status"
)

// Related で遅延読み込みできる関連の種類
type RelatedKind string

const (
	RelatedUnit    RelatedKind = "unit"
	RelatedProduct RelatedKind = "product"
)

// Personalisation は明細ごとの任意 name -> value
type Personalisation map[string]string

// 注文明細。価格・商品情報は購入時点のスナップショット
type Item struct {
	ID    int64 `json:"id"`
	IDVar IDVar `json:"-"`

	OrderID int64  `json:"order_id"`
	Order   *Order `json:"-"`

	ListPrice      float64 `json:"list_price"`
	ActualPrice    float64 `json:"actual_price"`
	BasePrice      float64 `json:"base_price"`
	Net            float64 `json:"net"`
	Discount       float64 `json:"discount"`
	Tax            float64 `json:"tax"`
	Gross          float64 `json:"gross"`
	RRP            float64 `json:"rrp"`
	TaxRate        float64 `json:"tax_rate"`
	ProductTaxRate float64 `json:"product_tax_rate"`
	TaxStrategy    string  `json:"tax_strategy"`

	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	UnitID       int64  `json:"unit_id"`
	UnitRevision int64  `json:"unit_revision"`
	SKU          string `json:"sku"`
	Barcode      string `json:"barcode"`
	Options      string `json:"options"`
	Brand        string `json:"brand"`
	Weight       int64  `json:"weight"`

	StockLocation *Location `json:"stock_location,omitempty"`

	Personalisation Personalisation `json:"personalisation"`

	//履歴から求めた現在のステータス（履歴が無ければnil）
	Status *status.Status `json:"status,omitempty"`

	Authorship Authorship `json:"authorship"`

	catalog CatalogLoader
	log     Logger
	unit    *Unit
	product *Product
	loaded  []RelatedKind
}

// NewItem は更新不可のauthorshipを持つ明細
func NewItem() *Item {
	it := &Item{Personalisation: Personalisation{}}
	it.Authorship.DisableUpdate()
	return it
}

// AttachCatalog は遅延読み込みに使うカタログを設定する。
func (it *Item) AttachCatalog(c CatalogLoader, log Logger) {
	it.catalog = c
	it.log = log
}

// Logger は読み込み失敗を記録する先（nilなら記録しない）
type Logger interface {
	Warn(msg string, keysAndValues ...interface{})
}

func (it *Item) warn(msg string, keysAndValues ...interface{}) {
	if it.log != nil {
		it.warn(msg, keysAndValues...)
	}
}

// Populate はカタログの単位から商品スナップショットを写す。
func (it *Item) Populate(u *Unit) {
	if it.Order != nil {
		it.ListPrice = u.Price("retail", it.Order.CurrencyID)
		it.RRP = u.Price("rrp", it.Order.CurrencyID)
	}
	if u.Product != nil {
		it.product = u.Product
		it.ProductID = u.Product.ID
		it.ProductName = u.Product.Name
		it.Brand = u.Product.Brand
		it.ProductTaxRate = u.Product.TaxRate
		it.TaxStrategy = u.Product.TaxStrategy
	}
	it.unit = u
	it.markLoaded(RelatedUnit)
	if u.Product != nil {
		it.markLoaded(RelatedProduct)
	}
	it.UnitID = u.ID
	it.UnitRevision = u.RevisionID
	it.SKU = u.SKU
	it.Barcode = u.Barcode
	it.Options = u.OptionString()
	it.Weight = u.Weight
}

// Description はブランド・商品名・オプション（空は飛ばす）
func (it *Item) Description() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{it.Brand, it.ProductName, it.Options} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// TaxDiscount は課税されていない明細の税控除額（課税済みならnil）
func (it *Item) TaxDiscount() *float64 {
	if it.Tax != 0 {
		return nil
	}
	v := math.Round((it.ListPrice-it.Discount-it.Net)*100) / 100
	return &v
}

// Unit は単位を読み込む（2回目以降はキャッシュ）。商品も同時に埋まる
func (it *Item) Unit(ctx context.Context, reload bool) (*Unit, bool) {
	if !reload && it.unit != nil {
		return it.unit, true
	}
	if it.catalog == nil {
		return nil, false
	}
	u, err := it.catalog.UnitByID(ctx, it.UnitID, it.UnitRevision, HistoricalCatalog)
	if err != nil || u == nil {
		it.warn("item unit load failed", "item_id", it.ID, "unit_id", it.UnitID, "revision", it.UnitRevision, "err", err)
		return nil, false
	}
	it.unit = u
	it.markLoaded(RelatedUnit)
	if u.Product != nil {
		it.product = u.Product
		it.markLoaded(RelatedProduct)
	}
	return u, true
}

// Product は商品を読み込む（2回目以降はキャッシュ）
func (it *Item) Product(ctx context.Context, reload bool) (*Product, bool) {
	if !reload && it.product != nil {
		return it.product, true
	}
	if it.catalog == nil {
		return nil, false
	}
	p, err := it.catalog.ProductByID(ctx, it.ProductID, HistoricalCatalog)
	if err != nil || p == nil {
		it.warn("item product load failed", "item_id", it.ID, "product_id", it.ProductID, "err", err)
		return nil, false
	}
	it.product = p
	it.markLoaded(RelatedProduct)
	return p, true
}

// Related は種類を指定して関連を読み込む。
func (it *Item) Related(ctx context.Context, kind RelatedKind, reload bool) (any, bool) {
	switch kind {
	case RelatedUnit:
		if u, ok := it.Unit(ctx, reload); ok {
			return u, true
		}
	case RelatedProduct:
		if p, ok := it.Product(ctx, reload); ok {
			return p, true
		}
	}
	return nil, false
}

// Loaded は読み込み済みの関連（読み込んだ順）
func (it *Item) Loaded() []RelatedKind {
	return append([]RelatedKind(nil), it.loaded...)
}

func (it *Item) markLoaded(k RelatedKind) {
	for _, l := range it.loaded {
		if l == k {
			return
		}
	}
	it.loaded = append(it.loaded, k)
}
