package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
)

type createReferralRequest struct {
	BrokerID          string         `json:"broker_id"`
	CustomerEmail     string         `json:"customer_email"`
	CustomerPaymentID string         `json:"customer_payment_id"`
	Metadata          map[string]any `json:"metadata"`
}

// @Summary      Create Referral
// @Description  Register a customer referred by a broker
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createReferralRequest true "Create Referral Request"
// @Success      200  {object}  referraldomain.Referral
// @Router       /referrals [post]
func (s *Server) CreateReferral(c *gin.Context) {
	var req createReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.referralSvc.Create(c.Request.Context(), referraldomain.CreateReferralRequest{
		BrokerID:          strings.TrimSpace(req.BrokerID),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		CustomerPaymentID: strings.TrimSpace(req.CustomerPaymentID),
		Metadata:          req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Referral
// @Description  Get referral by ID
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Referral ID"
// @Success      200  {object}  referraldomain.Referral
// @Router       /referrals/{id} [get]
func (s *Server) GetReferralByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.referralSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Broker Referrals
// @Description  List referrals attributed to a broker
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Broker ID"
// @Success      200  {object}  []referraldomain.Referral
// @Router       /brokers/{id}/referrals [get]
func (s *Server) ListBrokerReferrals(c *gin.Context) {
	brokerID := strings.TrimSpace(c.Param("id"))
	resp, err := s.referralSvc.ListByBroker(c.Request.Context(), brokerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Cancel Referral
// @Description  Cancel a referral; unpaid commissions stop accruing
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Referral ID"
// @Success      200  {object}  referraldomain.Referral
// @Router       /referrals/{id}/cancel [post]
func (s *Server) CancelReferral(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.referralSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordPaymentRequest struct {
	PaymentID string `json:"payment_id"`
	PaidAt    string `json:"paid_at"`
}

// @Summary      Record Referral Payment
// @Description  Credit a commission for a settled customer payment
// @Tags         referrals
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id      path  string                true  "Referral ID"
// @Param        request body  recordPaymentRequest  true  "Record Payment Request"
// @Success      200  {object}  referraldomain.EarningRecord
// @Router       /referrals/{id}/payments [post]
func (s *Server) RecordReferralPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paidAt := s.clock.Now()
	if raw := strings.TrimSpace(req.PaidAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("paid_at", "invalid_paid_at", "paid_at must be RFC3339"))
			return
		}
		paidAt = parsed.UTC()
	}

	resp, err := s.referralSvc.RecordPayment(c.Request.Context(), referraldomain.RecordPaymentRequest{
		ReferralID: strings.TrimSpace(c.Param("id")),
		PaymentID:  strings.TrimSpace(req.PaymentID),
		PaidAt:     paidAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if resp == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "credited": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "credited": true})
}
