package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	brokerservice "github.com/smallbiznis/lienclock/internal/broker/service"
	paymentdomain "github.com/smallbiznis/lienclock/internal/payment/domain"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
	referralservice "github.com/smallbiznis/lienclock/internal/referral/service"
)

func newTestService(t *testing.T) (paymentdomain.Service, referraldomain.Service, *gorm.DB, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&brokerdomain.Broker{},
		&referraldomain.Referral{},
		&referraldomain.EarningRecord{},
		&paymentdomain.EventRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_events_provider_event
		 ON payment_events (provider, provider_event_id)`,
	).Error; err != nil {
		t.Fatalf("create index: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	log := zap.NewNop()

	brokerSvc := brokerservice.NewService(brokerservice.ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
	})
	broker, err := brokerSvc.Create(context.Background(), brokerdomain.CreateBrokerRequest{
		Name:            "Pat Broker",
		Email:           "pat@example.com",
		CommissionModel: payoutdomain.CommissionModelRecurring,
	})
	if err != nil {
		t.Fatalf("create broker: %v", err)
	}

	referralSvc := referralservice.NewService(referralservice.ServiceParam{
		DB:        db,
		Log:       log,
		GenID:     node,
		BrokerSvc: brokerSvc,
		Policy:    payoutdomain.DefaultPolicy(),
	})
	referral, err := referralSvc.Create(context.Background(), referraldomain.CreateReferralRequest{
		BrokerID:      broker.ID.String(),
		CustomerEmail: "customer@example.com",
	})
	if err != nil {
		t.Fatalf("create referral: %v", err)
	}

	paymentSvc := NewService(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		ReferralSvc: referralSvc,
	})
	return paymentSvc, referralSvc, db, referral.ID
}

func TestIngestWebhookCreditsCommission(t *testing.T) {
	paymentSvc, _, db, referralID := newTestService(t)

	paidAt := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	payload := []byte(`{
		"id": "evt_1",
		"type": "payment.succeeded",
		"referral_id": "` + referralID + `",
		"payment_id": "pay_1",
		"paid_at": "` + paidAt.Format(time.RFC3339) + `"
	}`)

	record, err := paymentSvc.IngestWebhook(context.Background(), "Stripe", payload)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if record.Provider != "stripe" {
		t.Fatalf("provider should be lowercased, got %q", record.Provider)
	}
	if record.ReferralID == nil || *record.ReferralID != referralID {
		t.Fatalf("record should reference the referral")
	}

	var earnings []referraldomain.EarningRecord
	if err := db.Find(&earnings, "referral_id = ?", referralID).Error; err != nil {
		t.Fatalf("load earnings: %v", err)
	}
	if len(earnings) != 1 {
		t.Fatalf("expected 1 earning record, got %d", len(earnings))
	}
	if !earnings[0].PaymentDate.Equal(paidAt) {
		t.Fatalf("payment date = %v, want %v", earnings[0].PaymentDate, paidAt)
	}
}

func TestIngestWebhookRedeliveryIsIdempotent(t *testing.T) {
	paymentSvc, _, db, referralID := newTestService(t)

	payload := []byte(`{"id": "evt_1", "referral_id": "` + referralID + `", "payment_id": "pay_1", "paid_at": "2025-04-01T09:00:00Z"}`)

	if _, err := paymentSvc.IngestWebhook(context.Background(), "stripe", payload); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	_, err := paymentSvc.IngestWebhook(context.Background(), "stripe", payload)
	if !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed, got %v", err)
	}

	var earnings int64
	if err := db.Model(&referraldomain.EarningRecord{}).Count(&earnings).Error; err != nil {
		t.Fatalf("count earnings: %v", err)
	}
	if earnings != 1 {
		t.Fatalf("redelivery must not double-credit, got %d records", earnings)
	}
}

func TestIngestWebhookUnknownReferralIsRecorded(t *testing.T) {
	paymentSvc, _, db, _ := newTestService(t)

	payload := []byte(`{"id": "evt_2", "referral_id": "does-not-exist", "payment_id": "pay_1"}`)
	record, err := paymentSvc.IngestWebhook(context.Background(), "stripe", payload)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if record == nil {
		t.Fatalf("event should still be recorded for later inspection")
	}

	var earnings int64
	if err := db.Model(&referraldomain.EarningRecord{}).Count(&earnings).Error; err != nil {
		t.Fatalf("count earnings: %v", err)
	}
	if earnings != 0 {
		t.Fatalf("unknown referral must not credit a commission")
	}
}

func TestIngestWebhookRejectsBadInput(t *testing.T) {
	paymentSvc, _, _, _ := newTestService(t)

	if _, err := paymentSvc.IngestWebhook(context.Background(), "", []byte(`{"id":"evt"}`)); !errors.Is(err, paymentdomain.ErrInvalidProvider) {
		t.Fatalf("expected ErrInvalidProvider, got %v", err)
	}
	if _, err := paymentSvc.IngestWebhook(context.Background(), "stripe", []byte(`not json`)); !errors.Is(err, paymentdomain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if _, err := paymentSvc.IngestWebhook(context.Background(), "stripe", []byte(`{"type":"x"}`)); !errors.Is(err, paymentdomain.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}
