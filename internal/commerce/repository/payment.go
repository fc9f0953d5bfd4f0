package repository

import (
	"context"
	"errors"
	"fmt"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) FetchPayment(ctx context.Context, id string) (*invoicedomain.Payment, error) {
	var record paymentRecord
	err := r.db.WithContext(ctx).
		Select("id", "order_id", "payment_collection_id").
		Where("id = ?", id).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("fetch payment %s: %w", id, err)
	}

	payment := &invoicedomain.Payment{ID: record.ID}
	if record.OrderID != nil {
		payment.OrderID = *record.OrderID
	}
	if record.PaymentCollectionID != nil {
		payment.PaymentCollectionID = *record.PaymentCollectionID
	}
	return payment, nil
}

var _ invoicedomain.PaymentQuery = (*PaymentRepository)(nil)
