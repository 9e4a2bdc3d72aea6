package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	authdomain "github.com/smallbiznis/lienclock/internal/auth/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary      Login
// @Description  Authenticate an admin user and issue an API key
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Login Request"
// @Success      200  {object}  apikeydomain.IssuedKey
// @Router       /auth/login [post]
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authSvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type issueAPIKeyRequest struct {
	Name string `json:"name"`
}

// @Summary      Issue API Key
// @Description  Mint a new API key; the plaintext is returned exactly once
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        request body issueAPIKeyRequest true "Issue API Key Request"
// @Success      200  {object}  apikeydomain.IssuedKey
// @Router       /api-keys [post]
func (s *Server) IssueAPIKey(c *gin.Context) {
	var req issueAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var userID *snowflake.ID
	if raw, ok := c.Get(contextUserIDKey); ok {
		if value, isInt := raw.(int64); isInt && value != 0 {
			id := snowflake.ID(value)
			userID = &id
		}
	}

	resp, err := s.apiKeySvc.Issue(c.Request.Context(), userID, strings.TrimSpace(req.Name))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List API Keys
// @Description  List issued API keys without key material
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  []apikeydomain.APIKey
// @Router       /api-keys [get]
func (s *Server) ListAPIKeys(c *gin.Context) {
	resp, err := s.apiKeySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Revoke API Key
// @Description  Revoke an API key so it no longer authenticates
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id  path  string  true  "API Key ID"
// @Success      204
// @Router       /api-keys/{id} [delete]
func (s *Server) RevokeAPIKey(c *gin.Context) {
	if err := s.apiKeySvc.Revoke(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
