package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Read model of the commerce backend tables. The service never writes them.

type orderRecord struct {
	ID                 string          `gorm:"primaryKey;type:varchar(64)"`
	DisplayID          int64           `gorm:"not null"`
	CurrencyCode       string          `gorm:"type:varchar(8)"`
	Total              decimal.Decimal `gorm:"type:numeric"`
	ShippingTotal      decimal.Decimal `gorm:"type:numeric"`
	CustomerID         *string         `gorm:"type:varchar(64)"`
	Customer           *customerRecord
	BillingAddressID   *string `gorm:"type:varchar(64)"`
	BillingAddress     *addressRecord
	Items              []lineItemRecord          `gorm:"foreignKey:OrderID"`
	PaymentCollections []paymentCollectionRecord `gorm:"many2many:order_payment_collections;joinForeignKey:OrderID;joinReferences:PaymentCollectionID"`
	CreatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (orderRecord) TableName() string { return "orders" }

type customerRecord struct {
	ID    string `gorm:"primaryKey;type:varchar(64)"`
	Email string
}

func (customerRecord) TableName() string { return "customers" }

type addressRecord struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	FirstName   string
	LastName    string
	Address1    string `gorm:"column:address_1"`
	City        string
	PostalCode  string
	CountryCode string
}

func (addressRecord) TableName() string { return "order_addresses" }

type lineItemRecord struct {
	ID           string          `gorm:"primaryKey;type:varchar(64)"`
	OrderID      string          `gorm:"type:varchar(64);index"`
	Title        string
	ProductTitle string
	Quantity     int64
	UnitPrice    decimal.Decimal `gorm:"type:numeric"`
	CreatedAt    time.Time
}

func (lineItemRecord) TableName() string { return "order_line_items" }

type paymentCollectionRecord struct {
	ID       string          `gorm:"primaryKey;type:varchar(64)"`
	Payments []paymentRecord `gorm:"foreignKey:PaymentCollectionID"`
}

func (paymentCollectionRecord) TableName() string { return "payment_collections" }

type paymentRecord struct {
	ID                  string  `gorm:"primaryKey;type:varchar(64)"`
	OrderID             *string `gorm:"type:varchar(64)"`
	PaymentCollectionID *string `gorm:"type:varchar(64);index"`
	CreatedAt           time.Time
}

func (paymentRecord) TableName() string { return "payments" }
