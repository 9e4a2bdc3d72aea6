package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apikeydomain "github.com/smallbiznis/lienclock/internal/apikey/domain"
	authdomain "github.com/smallbiznis/lienclock/internal/auth/domain"
	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	capturedomain "github.com/smallbiznis/lienclock/internal/capture/domain"
	"github.com/smallbiznis/lienclock/internal/observability/logger"
	paymentdomain "github.com/smallbiznis/lienclock/internal/payment/domain"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// APIError is the wire shape for every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
		Field:   field,
	}
}

func invalidRequestError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

// AbortWithError maps domain errors onto HTTP responses and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "authentication required"}
	case errors.Is(err, ErrForbidden):
		return &APIError{Status: http.StatusForbidden, Code: "forbidden", Message: "access denied"}
	case errors.Is(err, ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	case errors.Is(err, ErrTooManyRequests):
		return &APIError{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: "rate limit exceeded"}
	case errors.Is(err, ErrServiceUnavailable):
		return &APIError{Status: http.StatusServiceUnavailable, Code: "service_unavailable", Message: "service unavailable"}
	}

	if status, code, ok := domainErrorStatus(err); ok {
		return &APIError{Status: status, Code: code, Message: err.Error()}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
	}

	return &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
}

func domainErrorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, brokerdomain.ErrBrokerNotFound),
		errors.Is(err, payoutdomain.ErrBrokerNotFound),
		errors.Is(err, referraldomain.ErrReferralNotFound),
		errors.Is(err, apikeydomain.ErrKeyNotFound):
		return http.StatusNotFound, err.Error(), true

	case errors.Is(err, brokerdomain.ErrEmailTaken),
		errors.Is(err, referraldomain.ErrReferralCanceled),
		errors.Is(err, payoutdomain.ErrNothingDue),
		errors.Is(err, apikeydomain.ErrKeyRevoked),
		errors.Is(err, paymentdomain.ErrEventAlreadyProcessed):
		return http.StatusConflict, err.Error(), true

	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error(), true

	case errors.Is(err, brokerdomain.ErrInvalidName),
		errors.Is(err, brokerdomain.ErrInvalidEmail),
		errors.Is(err, brokerdomain.ErrInvalidCommissionModel),
		errors.Is(err, brokerdomain.ErrInvalidBrokerID),
		errors.Is(err, payoutdomain.ErrInvalidBroker),
		errors.Is(err, payoutdomain.ErrInvalidEarningEvent),
		errors.Is(err, referraldomain.ErrInvalidReferralID),
		errors.Is(err, referraldomain.ErrInvalidCustomer),
		errors.Is(err, referraldomain.ErrInvalidPayment),
		errors.Is(err, capturedomain.ErrInvalidEmail),
		errors.Is(err, capturedomain.ErrInvalidPath),
		errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, apikeydomain.ErrInvalidName),
		errors.Is(err, apikeydomain.ErrInvalidKeyID),
		errors.Is(err, authdomain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error(), true
	}
	return 0, "", false
}
