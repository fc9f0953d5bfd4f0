package invoice

import (
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/render"
	"github.com/smallbiznis/invoicer/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
	fx.Provide(
		func(s *service.Service) invoicedomain.Service { return s },
		func(s *service.Service) invoicedomain.PaymentCapturedHandler { return s },
	),
)
