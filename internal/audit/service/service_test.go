package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
	"github.com/smallbiznis/lienclock/internal/audit/repository"
)

func newTestService(t *testing.T) (auditdomain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&auditdomain.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestAuditLogMasksCustomerIdentifiers(t *testing.T) {
	svc, db := newTestService(t)

	targetID := "evt_1"
	err := svc.AuditLog(context.Background(), nil, "payment.ingest", "payment_event", &targetID, map[string]any{
		"provider":       "stripe",
		"customer_email": "customer@example.com",
	})
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}

	var stored auditdomain.AuditLog
	if err := db.First(&stored, "action = ?", "payment.ingest").Error; err != nil {
		t.Fatalf("load audit row: %v", err)
	}
	if stored.Metadata["provider"] != "stripe" {
		t.Fatalf("provider should pass through, got %v", stored.Metadata["provider"])
	}
	if stored.Metadata["customer_email"] != "****.com" {
		t.Fatalf("customer_email should be masked at rest, got %v", stored.Metadata["customer_email"])
	}
}

func TestAuditLogRejectsMissingAction(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AuditLog(context.Background(), nil, "  ", "payment_event", nil, nil)
	if err != auditdomain.ErrInvalidAction {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}
