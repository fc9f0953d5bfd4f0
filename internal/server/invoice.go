package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"go.uber.org/zap"
)

func (s *Server) ListInvoices(c *gin.Context) {
	invoices, err := s.invoiceSvc.ListInvoices(c.Request.Context(), invoicedomain.ListInvoicesRequest{
		Query: strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		s.log.Error("list invoices", zap.Error(err))
		AbortWithError(c, errors.Join(ErrLoadInvoices, err))
		return
	}

	if invoices == nil {
		invoices = []invoicedomain.Invoice{}
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}
