package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
)

type createBrokerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CommissionModel string `json:"commission_model"`
}

// @Summary      Create Broker
// @Description  Register a new referring broker
// @Tags         brokers
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body createBrokerRequest true "Create Broker Request"
// @Success      200  {object}  brokerdomain.Broker
// @Router       /brokers [post]
func (s *Server) CreateBroker(c *gin.Context) {
	var req createBrokerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.brokerSvc.Create(c.Request.Context(), brokerdomain.CreateBrokerRequest{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		CommissionModel: payoutdomain.CommissionModel(strings.ToUpper(strings.TrimSpace(req.CommissionModel))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Brokers
// @Description  List registered brokers
// @Tags         brokers
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  []brokerdomain.Broker
// @Router       /brokers [get]
func (s *Server) ListBrokers(c *gin.Context) {
	resp, err := s.brokerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Broker
// @Description  Get broker by ID
// @Tags         brokers
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      string  true  "Broker ID"
// @Success      200  {object}  brokerdomain.Broker
// @Router       /brokers/{id} [get]
func (s *Server) GetBrokerByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.brokerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
