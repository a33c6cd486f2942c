package order

import (
	"context"
	"testing"

	"commerce/internal/domain/model"
	"commerce/internal/infra/db"
	"commerce/internal/infra/db/dbtest"
	"commerce/internal/logger"
	"commerce/internal/method"
	"commerce/internal/status"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// =====================
// Mocks
// =====================

type UserLoaderMock struct{ mock.Mock }

func (m *UserLoaderMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type CatalogLoaderMock struct{ mock.Mock }

func (m *CatalogLoaderMock) UnitByID(ctx context.Context, id, revision int64, opts model.CatalogOptions) (*model.Unit, error) {
	args := m.Called(ctx, id, revision, opts)
	u, _ := args.Get(0).(*model.Unit)
	return u, args.Error(1)
}

func (m *CatalogLoaderMock) ProductByID(ctx context.Context, id int64, opts model.CatalogOptions) (*model.Product, error) {
	args := m.Called(ctx, id, opts)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func entityConfig(c model.CatalogLoader) EntityConfig {
	return EntityConfig{
		ItemStatuses:    status.ItemCatalog(),
		Locations:       model.NewLocations(model.Location{Name: "web", DisplayName: "Web"}, model.Location{Name: "shop", DisplayName: "Shop"}),
		Catalog:         c,
		PaymentMethods:  method.Payments(),
		DispatchMethods: method.Dispatches(),
		RefundMethods:   method.Refunds(),
	}
}

func newTestLoader(q db.Query, users UserLoader, c model.CatalogLoader) *Loader {
	return NewLoader(q, users, status.OrderCatalog(), status.ItemCatalog(), NewEntities(q, entityConfig(c), logger.Nop()), logger.Nop())
}

// sqliteに注文を作る（order_id を返す）
type seedOrder struct {
	userID    *int64
	createdAt int64
	deletedAt *int64
	statuses  []db.OrderStatusRow
}

func seedOrderRow(t *testing.T, gdb *gorm.DB, s seedOrder) int64 {
	t.Helper()
	row := &db.OrderSummaryRow{
		UserID:         s.userID,
		UserEmail:      "buyer@example.com",
		CurrencyID:     "GBP",
		ConversionRate: 1,
		ProductNet:     20,
		ProductTax:     4,
		ProductGross:   24,
		TotalNet:       25,
		TotalTax:       5,
		TotalGross:     30,
		Taxable:        true,
		CreatedAt:      s.createdAt,
		CreatedBy:      dbtest.Ptr(int64(1)),
		DeletedAt:      s.deletedAt,
	}
	dbtest.Insert(t, gdb, row)
	for _, st := range s.statuses {
		st.OrderID = row.OrderID
		dbtest.Insert(t, gdb, &st)
	}
	return row.OrderID
}

func seedItem(t *testing.T, gdb *gorm.DB, orderID int64, deletedAt *int64, statuses ...db.OrderItemStatusRow) int64 {
	t.Helper()
	row := &db.OrderItemRow{
		OrderID:       orderID,
		ListPrice:     12,
		ActualPrice:   12,
		BasePrice:     12,
		Net:           10,
		Tax:           2,
		Gross:         12,
		RRP:           15,
		TaxRate:       20,
		TaxStrategy:   "inclusive",
		ProductID:     10,
		ProductName:   "Shirt",
		UnitID:        20,
		UnitRevision:  3,
		SKU:           "SHIRT-L",
		Options:       "Red, L",
		Brand:         "Acme",
		WeightGrams:   250,
		StockLocation: "web",
		CreatedAt:     100,
		DeletedAt:     deletedAt,
	}
	dbtest.Insert(t, gdb, row)
	for _, st := range statuses {
		st.ItemID = row.ItemID
		st.OrderID = orderID
		dbtest.Insert(t, gdb, &st)
	}
	return row.ItemID
}
