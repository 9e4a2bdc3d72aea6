package server

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	apikeydomain "github.com/smallbiznis/lienclock/internal/apikey/domain"
	"github.com/smallbiznis/lienclock/internal/auditcontext"
)

const (
	contextAuthTypeKey = "auth_type"
	contextAPIKeyIDKey = "api_key_id"
	contextUserIDKey   = "user_id"
)

// APIKeyRequired authenticates requests with a bearer API key.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		hash := apikeydomain.HashAPIKey(parts[1])

		var record struct {
			ID      snowflake.ID  `gorm:"column:id"`
			UserID  *snowflake.ID `gorm:"column:user_id"`
			KeyHash string        `gorm:"column:key_hash"`
		}

		if err := s.db.WithContext(c.Request.Context()).Raw(
			`SELECT id, user_id, key_hash
			 FROM api_keys
			 WHERE key_hash = ?
			   AND revoked_at IS NULL
			 LIMIT 1`,
			hash,
		).Scan(&record).Error; err != nil {
			AbortWithError(c, err)
			return
		}

		if record.ID == 0 || subtle.ConstantTimeCompare([]byte(record.KeyHash), []byte(hash)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.db.WithContext(c.Request.Context()).Exec(
			`UPDATE api_keys SET last_used_at = ? WHERE id = ?`,
			time.Now().UTC(),
			record.ID,
		).Error; err != nil {
			s.log.Warn("failed to touch api key")
		}

		c.Set(contextAuthTypeKey, "api_key")
		c.Set(contextAPIKeyIDKey, int64(record.ID))
		if record.UserID != nil {
			c.Set(contextUserIDKey, int64(*record.UserID))
		}

		ctx := auditcontext.WithActor(c.Request.Context(), "api_key", record.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
