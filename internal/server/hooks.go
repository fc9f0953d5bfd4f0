package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicer/internal/events"
	"go.uber.org/zap"
)

const maxHookBody = 64 << 10

// PaymentCaptured accepts a payment captured notification and returns before
// the invoice is generated.
func (s *Server) PaymentCaptured(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxHookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	evt, err := events.DecodePaymentCaptured(body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.events.Submit(c.Request.Context(), events.SourceHTTP, evt); err != nil {
		if errors.Is(err, events.ErrDispatcherStopped) {
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		s.log.Warn("payment captured hook not dispatched", zap.String("payment_id", evt.PaymentID), zap.Error(err))
		AbortWithError(c, errors.Join(ErrServiceUnavailable, err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
