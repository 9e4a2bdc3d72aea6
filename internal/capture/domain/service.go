package domain

import (
	"context"
	"errors"
)

type CaptureLeadRequest struct {
	Email    string
	Name     string
	Company  string
	Source   string
	Metadata map[string]any
}

type RecordPageViewRequest struct {
	Path      string
	Referrer  string
	VisitorID string
	UserAgent string
}

type Service interface {
	CaptureLead(ctx context.Context, req CaptureLeadRequest) (*Lead, error)
	RecordPageView(ctx context.Context, req RecordPageViewRequest) error
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidPath  = errors.New("invalid_path")
)
