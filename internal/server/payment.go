package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/smallbiznis/lienclock/internal/payment/domain"
)

const maxWebhookBodyBytes = 256 * 1024

// @Summary      Ingest Payment Webhook
// @Description  Accept a payment provider event; redeliveries are idempotent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        provider  path  string  true  "Payment provider"
// @Success      200  {object}  paymentdomain.EventRecord
// @Security     ApiKeyAuth
// @Router       /webhooks/payments/{provider} [post]
func (s *Server) IngestPaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(payload) > maxWebhookBodyBytes {
		AbortWithError(c, newValidationError("body", "payload_too_large", "payload exceeds size limit"))
		return
	}

	record, err := s.paymentSvc.IngestWebhook(c.Request.Context(), provider, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"data": nil, "duplicate": true})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}
