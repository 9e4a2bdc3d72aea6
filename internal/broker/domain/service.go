package domain

import (
	"context"
	"errors"

	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
)

type CreateBrokerRequest struct {
	Name            string
	Email           string
	CommissionModel payoutdomain.CommissionModel
}

type Service interface {
	Create(ctx context.Context, req CreateBrokerRequest) (*Broker, error)
	GetByID(ctx context.Context, id string) (*Broker, error)
	List(ctx context.Context) ([]Broker, error)
}

var (
	ErrInvalidName            = errors.New("invalid_name")
	ErrInvalidEmail           = errors.New("invalid_email")
	ErrInvalidCommissionModel = errors.New("invalid_commission_model")
	ErrInvalidBrokerID        = errors.New("invalid_broker_id")
	ErrBrokerNotFound         = errors.New("broker_not_found")
	ErrEmailTaken             = errors.New("email_taken")
)
