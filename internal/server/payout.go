package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// @Summary      Broker Payout Report
// @Description  Ledger snapshot with earned, paid, due and on-hold totals
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id  path   string  true   "Broker ID"
// @Param        as_of  query  string  false  "Evaluation time (RFC3339), defaults to now"
// @Success      200  {object}  payoutdomain.LedgerSnapshot
// @Router       /brokers/{id}/payout-report [get]
func (s *Server) BrokerPayoutReport(c *gin.Context) {
	brokerID := strings.TrimSpace(c.Param("id"))

	now := s.clock.Now()
	if raw := strings.TrimSpace(c.Query("as_of")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("as_of", "invalid_as_of", "as_of must be RFC3339"))
			return
		}
		now = parsed.UTC()
	}

	resp, err := s.payoutSvc.BrokerSnapshot(c.Request.Context(), brokerID, now)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Disburse Broker
// @Description  Pay out every commission currently past its hold period
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id  path  string  true  "Broker ID"
// @Success      200  {object}  payoutdomain.Payout
// @Router       /brokers/{id}/disburse [post]
func (s *Server) DisburseBroker(c *gin.Context) {
	brokerID := strings.TrimSpace(c.Param("id"))

	resp, err := s.payoutSvc.Disburse(c.Request.Context(), brokerID, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
