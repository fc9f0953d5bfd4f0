package repository

import (
	"context"
	"errors"
	"fmt"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FetchOrder(ctx context.Context, id string, view invoicedomain.OrderView) (*invoicedomain.Order, error) {
	stmt := r.db.WithContext(ctx).Preload("BillingAddress")
	if view == invoicedomain.OrderViewDetail {
		stmt = stmt.
			Preload("Customer").
			Preload("Items", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC, id ASC")
			})
	}

	var record orderRecord
	err := stmt.Where("orders.id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetch order %s (%s): %w", id, view, err)
	}

	order := toOrder(record)
	return &order, nil
}

func (r *OrderRepository) ListOrdersByPaymentCollection(ctx context.Context, paymentCollectionID string) ([]invoicedomain.Order, error) {
	var records []orderRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN order_payment_collections opc ON opc.order_id = orders.id").
		Where("opc.payment_collection_id = ?", paymentCollectionID).
		Preload("PaymentCollections.Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Order("orders.created_at ASC, orders.id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for payment collection %s: %w", paymentCollectionID, err)
	}

	orders := make([]invoicedomain.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, toOrder(record))
	}
	return orders, nil
}

func toOrder(record orderRecord) invoicedomain.Order {
	order := invoicedomain.Order{
		ID:            record.ID,
		DisplayID:     record.DisplayID,
		CurrencyCode:  record.CurrencyCode,
		Total:         record.Total,
		ShippingTotal: record.ShippingTotal,
		CreatedAt:     record.CreatedAt,
	}
	if record.Customer != nil {
		order.CustomerEmail = record.Customer.Email
	}
	if addr := record.BillingAddress; addr != nil {
		order.BillingAddress = &invoicedomain.Address{
			FirstName:   addr.FirstName,
			LastName:    addr.LastName,
			Address1:    addr.Address1,
			City:        addr.City,
			PostalCode:  addr.PostalCode,
			CountryCode: addr.CountryCode,
		}
	}
	for _, item := range record.Items {
		order.Items = append(order.Items, invoicedomain.LineItem{
			Title:        item.Title,
			ProductTitle: item.ProductTitle,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}
	for _, collection := range record.PaymentCollections {
		ids := make([]string, 0, len(collection.Payments))
		for _, payment := range collection.Payments {
			ids = append(ids, payment.ID)
		}
		order.PaymentCollections = append(order.PaymentCollections, invoicedomain.PaymentCollection{
			ID:         collection.ID,
			PaymentIDs: ids,
		})
	}
	return order
}

var _ invoicedomain.OrderQuery = (*OrderRepository)(nil)
