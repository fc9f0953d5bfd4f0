package repository

import (
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("commerce.repository",
	fx.Provide(
		func(db *gorm.DB) invoicedomain.OrderQuery { return NewOrderRepository(db) },
		func(db *gorm.DB) invoicedomain.PaymentQuery { return NewPaymentRepository(db) },
	),
)
