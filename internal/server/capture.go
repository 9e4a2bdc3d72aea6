package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	capturedomain "github.com/smallbiznis/lienclock/internal/capture/domain"
)

type captureLeadRequest struct {
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	Company  string         `json:"company"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata"`
}

// @Summary      Capture Lead
// @Description  Record a marketing site signup
// @Tags         capture
// @Accept       json
// @Produce      json
// @Param        request body captureLeadRequest true "Capture Lead Request"
// @Success      200  {object}  capturedomain.Lead
// @Router       /capture/leads [post]
func (s *Server) CaptureLead(c *gin.Context) {
	var req captureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.captureSvc.CaptureLead(c.Request.Context(), capturedomain.CaptureLeadRequest{
		Email:    strings.TrimSpace(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Company:  strings.TrimSpace(req.Company),
		Source:   strings.TrimSpace(req.Source),
		Metadata: req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordPageViewRequest struct {
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
	VisitorID string `json:"visitor_id"`
}

// @Summary      Record Page View
// @Description  Record a marketing site page hit
// @Tags         capture
// @Accept       json
// @Produce      json
// @Param        request body recordPageViewRequest true "Record Page View Request"
// @Success      204
// @Router       /capture/pageviews [post]
func (s *Server) RecordPageView(c *gin.Context) {
	var req recordPageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.captureSvc.RecordPageView(c.Request.Context(), capturedomain.RecordPageViewRequest{
		Path:      strings.TrimSpace(req.Path),
		Referrer:  strings.TrimSpace(req.Referrer),
		VisitorID: strings.TrimSpace(req.VisitorID),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
