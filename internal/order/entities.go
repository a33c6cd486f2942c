package order

import (
	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/logger"
	"commerce/internal/method"
	"commerce/internal/status"
)

// EntityConfig はサブローダーの組み立てに使う設定
type EntityConfig struct {
	ItemStatuses *status.Catalog
	Locations    model.Locations
	Catalog      model.CatalogLoader

	PaymentMethods  *method.Collection
	DispatchMethods *method.Collection
	RefundMethods   *method.Collection
}

// NewEntities はサブローダー一式（注文ローダーに渡す原型）を作る。
// ItemStatusesが無ければ既定の明細ステータスを使う
func NewEntities(q db.Query, cfg EntityConfig, log *logger.Logger) Entities {
	if cfg.ItemStatuses == nil {
		cfg.ItemStatuses = status.ItemCatalog()
	}
	payments := NewPaymentLoader(q, cfg.PaymentMethods, log)
	return Entities{
		Addresses:  NewAddressLoader(q, log),
		Items:      NewItemLoader(q, status.NewResolver(cfg.ItemStatuses), cfg.Locations, cfg.Catalog, log),
		Payments:   payments,
		Notes:      NewNoteLoader(q, log),
		Dispatches: NewDispatchLoader(q, cfg.DispatchMethods, log),
		Refunds:    NewRefundLoader(q, payments, cfg.RefundMethods, log),
	}
}
