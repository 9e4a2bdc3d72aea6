package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup deletes data created by end-to-end test runs. Disabled in
// production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.IsProduction() {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	brokerIDs, err := s.loadBrokerIDsByPrefix(ctx, prefix)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.deleteBrokerData(ctx, brokerIDs); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) loadBrokerIDsByPrefix(ctx context.Context, prefix string) ([]int64, error) {
	like := strings.TrimSpace(prefix) + "%"
	var brokerIDs []int64
	if err := s.db.WithContext(ctx).
		Table("brokers").
		Select("id").
		Where("email LIKE ?", like).
		Scan(&brokerIDs).Error; err != nil {
		return nil, err
	}
	return brokerIDs, nil
}

func (s *Server) deleteBrokerData(ctx context.Context, brokerIDs []int64) error {
	if len(brokerIDs) == 0 {
		return nil
	}
	queries := []string{
		`DELETE FROM earning_records WHERE broker_id IN ?`,
		`DELETE FROM payouts WHERE broker_id IN ?`,
		`DELETE FROM referrals WHERE broker_id IN ?`,
		`DELETE FROM brokers WHERE id IN ?`,
	}
	for _, query := range queries {
		if err := s.db.WithContext(ctx).Exec(query, brokerIDs).Error; err != nil {
			return err
		}
	}
	return nil
}
