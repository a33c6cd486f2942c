package db

import "gorm.io/gorm"

// テーブル定義（AutoMigrate用）。時刻はUNIX秒で保存する。

type OrderSummaryRow struct {
	OrderID         int64   `gorm:"column:order_id;primaryKey;autoIncrement"`
	UserID          *int64  `gorm:"column:user_id;index"`
	UserEmail       string  `gorm:"column:user_email;type:varchar(255)"`
	CurrencyID      string  `gorm:"column:currency_id;type:varchar(3);not null;default:'GBP'"`
	ConversionRate  float64 `gorm:"column:conversion_rate;type:decimal(12,4);not null;default:1"`
	ProductNet      float64 `gorm:"column:product_net;type:decimal(10,2);not null;default:0"`
	ProductDiscount float64 `gorm:"column:product_discount;type:decimal(10,2);not null;default:0"`
	ProductTax      float64 `gorm:"column:product_tax;type:decimal(10,2);not null;default:0"`
	ProductGross    float64 `gorm:"column:product_gross;type:decimal(10,2);not null;default:0"`
	TotalNet        float64 `gorm:"column:total_net;type:decimal(10,2);not null;default:0"`
	TotalDiscount   float64 `gorm:"column:total_discount;type:decimal(10,2);not null;default:0"`
	TotalTax        float64 `gorm:"column:total_tax;type:decimal(10,2);not null;default:0"`
	TotalGross      float64 `gorm:"column:total_gross;type:decimal(10,2);not null;default:0"`
	Taxable         bool    `gorm:"column:taxable;not null;default:true"`
	CreatedAt       int64   `gorm:"column:created_at;not null;index;autoCreateTime:false"`
	CreatedBy       *int64  `gorm:"column:created_by"`
	UpdatedAt       *int64  `gorm:"column:updated_at;autoUpdateTime:false"`
	UpdatedBy       *int64  `gorm:"column:updated_by"`
	DeletedAt       *int64  `gorm:"column:deleted_at"`
	DeletedBy       *int64  `gorm:"column:deleted_by"`
}

func (OrderSummaryRow) TableName() string { return "order_summary" }

type OrderStatusRow struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    int64  `gorm:"column:order_id;not null;index"`
	StatusCode int    `gorm:"column:status_code;not null"`
	CreatedAt  int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy  *int64 `gorm:"column:created_by"`
}

func (OrderStatusRow) TableName() string { return "order_status" }

type OrderShippingRow struct {
	OrderID     int64   `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	Name        string  `gorm:"column:name;type:varchar(255)"`
	DisplayName string  `gorm:"column:display_name;type:varchar(255)"`
	ListPrice   float64 `gorm:"column:list_price;type:decimal(10,2);not null;default:0"`
	Net         float64 `gorm:"column:net;type:decimal(10,2);not null;default:0"`
	Discount    float64 `gorm:"column:discount;type:decimal(10,2);not null;default:0"`
	Tax         float64 `gorm:"column:tax;type:decimal(10,2);not null;default:0"`
	TaxRate     float64 `gorm:"column:tax_rate;type:decimal(10,4);not null;default:0"`
	Gross       float64 `gorm:"column:gross;type:decimal(10,2);not null;default:0"`
}

func (OrderShippingRow) TableName() string { return "order_shipping" }

type OrderShippingTaxRow struct {
	ID      int64   `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID int64   `gorm:"column:order_id;not null;index"`
	TaxType string  `gorm:"column:tax_type;type:varchar(50);not null"`
	TaxRate float64 `gorm:"column:tax_rate;type:decimal(10,4);not null;default:0"`
}

func (OrderShippingTaxRow) TableName() string { return "order_shipping_tax" }

type OrderMetadataRow struct {
	OrderID int64  `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	Key     string `gorm:"column:key;primaryKey;type:varchar(255)"`
	Value   string `gorm:"column:value;type:text"`
}

func (OrderMetadataRow) TableName() string { return "order_metadata" }

type OrderAddressRow struct {
	AddressID int64  `gorm:"column:address_id;primaryKey;autoIncrement"`
	OrderID   int64  `gorm:"column:order_id;not null;index"`
	Type      string `gorm:"column:type;type:varchar(20);not null"`
	Name      string `gorm:"column:name;type:varchar(255)"`
	Line1     string `gorm:"column:line_1;type:varchar(255)"`
	Line2     string `gorm:"column:line_2;type:varchar(255)"`
	Line3     string `gorm:"column:line_3;type:varchar(255)"`
	Line4     string `gorm:"column:line_4;type:varchar(255)"`
	Town      string `gorm:"column:town;type:varchar(255)"`
	StateID   string `gorm:"column:state_id;type:varchar(10)"`
	State     string `gorm:"column:state;type:varchar(255)"`
	Postcode  string `gorm:"column:postcode;type:varchar(20)"`
	Country   string `gorm:"column:country;type:varchar(255)"`
	CountryID string `gorm:"column:country_id;type:varchar(3)"`
	Telephone string `gorm:"column:telephone;type:varchar(30)"`
	CreatedAt int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy *int64 `gorm:"column:created_by"`
	DeletedAt *int64 `gorm:"column:deleted_at"`
	DeletedBy *int64 `gorm:"column:deleted_by"`
}

func (OrderAddressRow) TableName() string { return "order_address" }

type OrderItemRow struct {
	ItemID         int64   `gorm:"column:item_id;primaryKey;autoIncrement"`
	OrderID        int64   `gorm:"column:order_id;not null;index"`
	ListPrice      float64 `gorm:"column:list_price;type:decimal(10,2);not null;default:0"`
	ActualPrice    float64 `gorm:"column:actual_price;type:decimal(10,2);not null;default:0"`
	BasePrice      float64 `gorm:"column:base_price;type:decimal(10,2);not null;default:0"`
	Net            float64 `gorm:"column:net;type:decimal(10,2);not null;default:0"`
	Discount       float64 `gorm:"column:discount;type:decimal(10,2);not null;default:0"`
	Tax            float64 `gorm:"column:tax;type:decimal(10,2);not null;default:0"`
	Gross          float64 `gorm:"column:gross;type:decimal(10,2);not null;default:0"`
	RRP            float64 `gorm:"column:rrp;type:decimal(10,2);not null;default:0"`
	TaxRate        float64 `gorm:"column:tax_rate;type:decimal(10,4);not null;default:0"`
	ProductTaxRate float64 `gorm:"column:product_tax_rate;type:decimal(10,4);not null;default:0"`
	TaxStrategy    string  `gorm:"column:tax_strategy;type:varchar(20)"`
	ProductID      int64   `gorm:"column:product_id;index"`
	ProductName    string  `gorm:"column:product_name;type:varchar(255)"`
	UnitID         int64   `gorm:"column:unit_id"`
	UnitRevision   int64   `gorm:"column:unit_revision"`
	SKU            string  `gorm:"column:sku;type:varchar(100)"`
	Barcode        string  `gorm:"column:barcode;type:varchar(100)"`
	Options        string  `gorm:"column:options;type:varchar(255)"`
	Brand          string  `gorm:"column:brand;type:varchar(255)"`
	WeightGrams    int64   `gorm:"column:weight_grams;not null;default:0"`
	StockLocation  string  `gorm:"column:stock_location;type:varchar(50)"`
	CreatedAt      int64   `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy      *int64  `gorm:"column:created_by"`
	DeletedAt      *int64  `gorm:"column:deleted_at"`
	DeletedBy      *int64  `gorm:"column:deleted_by"`
}

func (OrderItemRow) TableName() string { return "order_item" }

type OrderItemStatusRow struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID     int64  `gorm:"column:item_id;not null;index"`
	OrderID    int64  `gorm:"column:order_id;not null;index"`
	StatusCode int    `gorm:"column:status_code;not null"`
	CreatedAt  int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy  *int64 `gorm:"column:created_by"`
}

func (OrderItemStatusRow) TableName() string { return "order_item_status" }

type OrderItemPersonalisationRow struct {
	ItemID int64  `gorm:"column:item_id;primaryKey;autoIncrement:false"`
	Name   string `gorm:"column:name;primaryKey;type:varchar(100)"`
	Value  string `gorm:"column:value;type:text"`
}

func (OrderItemPersonalisationRow) TableName() string { return "order_item_personalisation" }

type OrderPaymentRow struct {
	PaymentID int64   `gorm:"column:payment_id;primaryKey;autoIncrement"`
	OrderID   int64   `gorm:"column:order_id;not null;index"`
	Method    string  `gorm:"column:method;type:varchar(50);not null"`
	Amount    float64 `gorm:"column:amount;type:decimal(10,2);not null;default:0"`
	Reference string  `gorm:"column:reference;type:varchar(255)"`
	CreatedAt int64   `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy *int64  `gorm:"column:created_by"`
	DeletedAt *int64  `gorm:"column:deleted_at"`
	DeletedBy *int64  `gorm:"column:deleted_by"`
}

func (OrderPaymentRow) TableName() string { return "order_payment" }

type OrderNoteRow struct {
	NoteID           int64  `gorm:"column:note_id;primaryKey;autoIncrement"`
	OrderID          int64  `gorm:"column:order_id;not null;index"`
	Note             string `gorm:"column:note;type:text"`
	CustomerNotified bool   `gorm:"column:customer_notified;not null;default:false"`
	RaisedFrom       string `gorm:"column:raised_from;type:varchar(50)"`
	CreatedAt        int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy        *int64 `gorm:"column:created_by"`
	DeletedAt        *int64 `gorm:"column:deleted_at"`
	DeletedBy        *int64 `gorm:"column:deleted_by"`
}

func (OrderNoteRow) TableName() string { return "order_note" }

type OrderDispatchRow struct {
	DispatchID  int64   `gorm:"column:dispatch_id;primaryKey;autoIncrement"`
	OrderID     int64   `gorm:"column:order_id;not null;index"`
	Method      string  `gorm:"column:method;type:varchar(50);not null"`
	Code        *string `gorm:"column:code;type:varchar(100);index"`
	Cost        float64 `gorm:"column:cost;type:decimal(10,2);not null;default:0"`
	WeightGrams int64   `gorm:"column:weight_grams;not null;default:0"`
	ShippedAt   *int64  `gorm:"column:shipped_at"`
	ShippedBy   *int64  `gorm:"column:shipped_by"`
	CreatedAt   int64   `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy   *int64  `gorm:"column:created_by"`
	UpdatedAt   *int64  `gorm:"column:updated_at;autoUpdateTime:false"`
	UpdatedBy   *int64  `gorm:"column:updated_by"`
	DeletedAt   *int64  `gorm:"column:deleted_at"`
	DeletedBy   *int64  `gorm:"column:deleted_by"`
}

func (OrderDispatchRow) TableName() string { return "order_dispatch" }

type OrderRefundRow struct {
	RefundID  int64   `gorm:"column:refund_id;primaryKey;autoIncrement"`
	OrderID   int64   `gorm:"column:order_id;not null;index"`
	PaymentID *int64  `gorm:"column:payment_id"`
	ReturnID  *int64  `gorm:"column:return_id"`
	Method    *string `gorm:"column:method;type:varchar(50)"`
	Amount    float64 `gorm:"column:amount;type:decimal(10,2);not null"`
	Reason    *string `gorm:"column:reason;type:varchar(255)"`
	Reference *string `gorm:"column:reference;type:varchar(255)"`
	CreatedAt int64   `gorm:"column:created_at;not null;autoCreateTime:false"`
	CreatedBy *int64  `gorm:"column:created_by"`
	DeletedAt *int64  `gorm:"column:deleted_at"`
	DeletedBy *int64  `gorm:"column:deleted_by"`
}

func (OrderRefundRow) TableName() string { return "order_refund" }

type UserRow struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	Forename  string `gorm:"column:forename;type:varchar(255)"`
	Surname   string `gorm:"column:surname;type:varchar(255)"`
	CreatedAt int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
}

func (UserRow) TableName() string { return "users" }

type ProductRow struct {
	ProductID   int64   `gorm:"column:product_id;primaryKey;autoIncrement"`
	Name        string  `gorm:"column:name;type:varchar(255);not null"`
	Brand       string  `gorm:"column:brand;type:varchar(255)"`
	TaxRate     float64 `gorm:"column:tax_rate;type:decimal(10,4);not null;default:0"`
	TaxStrategy string  `gorm:"column:tax_strategy;type:varchar(20);not null;default:'inclusive'"`
	CreatedAt   int64   `gorm:"column:created_at;not null;autoCreateTime:false"`
	DeletedAt   *int64  `gorm:"column:deleted_at"`
}

func (ProductRow) TableName() string { return "product" }

type ProductUnitRow struct {
	UnitID      int64  `gorm:"column:unit_id;primaryKey;autoIncrement:false"`
	RevisionID  int64  `gorm:"column:revision_id;primaryKey;autoIncrement:false"`
	ProductID   int64  `gorm:"column:product_id;not null;index"`
	SKU         string `gorm:"column:sku;type:varchar(100)"`
	Barcode     string `gorm:"column:barcode;type:varchar(100)"`
	WeightGrams int64  `gorm:"column:weight_grams;not null;default:0"`
	Visible     bool   `gorm:"column:visible;not null;default:true"`
	CreatedAt   int64  `gorm:"column:created_at;not null;autoCreateTime:false"`
	DeletedAt   *int64 `gorm:"column:deleted_at"`
}

func (ProductUnitRow) TableName() string { return "product_unit" }

type ProductUnitOptionRow struct {
	UnitID     int64  `gorm:"column:unit_id;primaryKey;autoIncrement:false"`
	RevisionID int64  `gorm:"column:revision_id;primaryKey;autoIncrement:false"`
	OptionName string `gorm:"column:option_name;primaryKey;type:varchar(50)"`
	Value      string `gorm:"column:option_value;type:varchar(255)"`
}

func (ProductUnitOptionRow) TableName() string { return "product_unit_option" }

type ProductUnitPriceRow struct {
	UnitID     int64   `gorm:"column:unit_id;primaryKey;autoIncrement:false"`
	Type       string  `gorm:"column:type;primaryKey;type:varchar(20)"`
	CurrencyID string  `gorm:"column:currency_id;primaryKey;type:varchar(3)"`
	Price      float64 `gorm:"column:price;type:decimal(10,2);not null;default:0"`
}

func (ProductUnitPriceRow) TableName() string { return "product_unit_price" }

type ProductUnitStockRow struct {
	UnitID   int64  `gorm:"column:unit_id;primaryKey;autoIncrement:false"`
	Location string `gorm:"column:location;primaryKey;type:varchar(50)"`
	Stock    int64  `gorm:"column:stock;not null;default:0"`
}

func (ProductUnitStockRow) TableName() string { return "product_unit_stock" }

// 監査ログ（管理者操作ログ）
type AuditLogRow struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ActorUserID  *int64 `gorm:"column:actor_user_id;index"`
	Action       string `gorm:"column:action;type:varchar(50);not null;index"`
	ResourceType string `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   int64  `gorm:"column:resource_id;not null;index"`
	OrderID      int64  `gorm:"column:order_id;not null;index"`
	AfterJSON    string `gorm:"column:after_json;type:text"`
	CreatedAt    int64  `gorm:"column:created_at;not null;index;autoCreateTime:false"`
}

func (AuditLogRow) TableName() string { return "audit_log" }

// Migrate はテーブルを作成・更新する。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&OrderSummaryRow{},
		&OrderStatusRow{},
		&OrderShippingRow{},
		&OrderShippingTaxRow{},
		&OrderMetadataRow{},
		&OrderAddressRow{},
		&OrderItemRow{},
		&OrderItemStatusRow{},
		&OrderItemPersonalisationRow{},
		&OrderPaymentRow{},
		&OrderNoteRow{},
		&OrderDispatchRow{},
		&OrderRefundRow{},
		&UserRow{},
		&ProductRow{},
		&ProductUnitRow{},
		&ProductUnitOptionRow{},
		&ProductUnitPriceRow{},
		&ProductUnitStockRow{},
		&AuditLogRow{},
	)
}
