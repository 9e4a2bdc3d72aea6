package domain

import (
	"context"
	"errors"
)

// Service records audit entries. Writers never fail the caller's operation;
// handlers ignore the returned error after logging it.
type Service interface {
	AuditLog(
		ctx context.Context,
		actorID *string,
		action string,
		targetType string,
		targetID *string,
		metadata map[string]any,
	) error
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}

var (
	ErrInvalidAction     = errors.New("invalid_action")
	ErrInvalidTargetType = errors.New("invalid_target_type")
)
