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
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	"github.com/smallbiznis/lienclock/internal/payout/repository"
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	broker    *brokerdomain.Broker
	payoutSvc payoutdomain.Service
}

func newFixture(t *testing.T, model payoutdomain.CommissionModel) *fixture {
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
		&payoutdomain.Payout{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
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
		CommissionModel: model,
	})
	if err != nil {
		t.Fatalf("create broker: %v", err)
	}

	payoutSvc := NewService(ServiceParam{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      repository.Provide(),
		BrokerSvc: brokerSvc,
		Policy:    payoutdomain.DefaultPolicy(),
	})

	return &fixture{db: db, node: node, broker: broker, payoutSvc: payoutSvc}
}

func (f *fixture) insertEvent(t *testing.T, amountCents int64, paymentDate time.Time, status payoutdomain.ReferralStatus, paidAt *time.Time) referraldomain.EarningRecord {
	t.Helper()
	record := referraldomain.EarningRecord{
		ID:                f.node.Generate(),
		ReferralID:        "ref-1",
		BrokerID:          f.broker.ID,
		CustomerEmail:     "customer@example.com",
		CustomerPaymentID: "cus_1",
		CommissionModel:   f.broker.CommissionModel,
		AmountCents:       amountCents,
		PaymentDate:       paymentDate,
		Status:            status,
		PaidAt:            paidAt,
	}
	if err := f.db.Create(&record).Error; err != nil {
		t.Fatalf("insert earning record: %v", err)
	}
	return record
}

func TestBrokerSnapshotBuckets(t *testing.T) {
	f := newFixture(t, payoutdomain.CommissionModelRecurring)

	paid := testNow.AddDate(0, 0, -90)
	f.insertEvent(t, 2500, paid, payoutdomain.ReferralStatusActive, &paid)
	f.insertEvent(t, 2500, testNow.AddDate(0, 0, -70), payoutdomain.ReferralStatusActive, nil)
	f.insertEvent(t, 2500, testNow.AddDate(0, 0, -10), payoutdomain.ReferralStatusActive, nil)

	snapshot, err := f.payoutSvc.BrokerSnapshot(context.Background(), f.broker.ID.String(), testNow)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snapshot.EarnedCents != 7500 {
		t.Fatalf("earned = %d, want 7500", snapshot.EarnedCents)
	}
	if snapshot.PaidCents != 2500 {
		t.Fatalf("paid = %d, want 2500", snapshot.PaidCents)
	}
	if snapshot.DueNowCents != 2500 {
		t.Fatalf("due = %d, want 2500", snapshot.DueNowCents)
	}
	if snapshot.OnHoldCents != 2500 {
		t.Fatalf("on hold = %d, want 2500", snapshot.OnHoldCents)
	}
	if snapshot.NextPayoutDate == nil {
		t.Fatalf("expected a next payout date for the held event")
	}
}

func TestBrokerSnapshotUnknownBroker(t *testing.T) {
	f := newFixture(t, payoutdomain.CommissionModelBounty)

	_, err := f.payoutSvc.BrokerSnapshot(context.Background(), "999999", testNow)
	if !errors.Is(err, brokerdomain.ErrBrokerNotFound) {
		t.Fatalf("expected ErrBrokerNotFound, got %v", err)
	}
}

func TestDisbursePaysOnlyMaturedEvents(t *testing.T) {
	f := newFixture(t, payoutdomain.CommissionModelRecurring)

	matured := f.insertEvent(t, 2500, testNow.AddDate(0, 0, -70), payoutdomain.ReferralStatusActive, nil)
	boundary := f.insertEvent(t, 2500, testNow.AddDate(0, 0, -60), payoutdomain.ReferralStatusActive, nil)
	held := f.insertEvent(t, 2500, testNow.AddDate(0, 0, -10), payoutdomain.ReferralStatusActive, nil)
	canceled := f.insertEvent(t, 2500, testNow.AddDate(0, 0, -90), payoutdomain.ReferralStatusCanceled, nil)

	payout, err := f.payoutSvc.Disburse(context.Background(), f.broker.ID.String(), testNow)
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}
	if payout.AmountCents != 5000 {
		t.Fatalf("payout amount = %d, want 5000", payout.AmountCents)
	}
	if payout.EventCount != 2 {
		t.Fatalf("event count = %d, want 2", payout.EventCount)
	}

	assertPaid := func(id snowflake.ID, wantPaid bool) {
		var record referraldomain.EarningRecord
		if err := f.db.First(&record, "id = ?", id).Error; err != nil {
			t.Fatalf("load record: %v", err)
		}
		if (record.PaidAt != nil) != wantPaid {
			t.Fatalf("record %d paid = %v, want %v", id, record.PaidAt != nil, wantPaid)
		}
		if wantPaid && (record.PayoutID == nil || *record.PayoutID != payout.ID) {
			t.Fatalf("paid record %d should reference payout %d", id, payout.ID)
		}
	}
	assertPaid(matured.ID, true)
	assertPaid(boundary.ID, true)
	assertPaid(held.ID, false)
	assertPaid(canceled.ID, false)

	// Everything due was just settled, so a second disbursement finds nothing.
	if _, err := f.payoutSvc.Disburse(context.Background(), f.broker.ID.String(), testNow); !errors.Is(err, payoutdomain.ErrNothingDue) {
		t.Fatalf("expected ErrNothingDue, got %v", err)
	}

	snapshot, err := f.payoutSvc.BrokerSnapshot(context.Background(), f.broker.ID.String(), testNow)
	if err != nil {
		t.Fatalf("snapshot after disburse: %v", err)
	}
	if snapshot.DueNowCents != 0 {
		t.Fatalf("due after disburse = %d, want 0", snapshot.DueNowCents)
	}
	if snapshot.PaidCents != 5000 {
		t.Fatalf("paid after disburse = %d, want 5000", snapshot.PaidCents)
	}
}

func TestDisburseNothingDue(t *testing.T) {
	f := newFixture(t, payoutdomain.CommissionModelRecurring)
	f.insertEvent(t, 2500, testNow.AddDate(0, 0, -10), payoutdomain.ReferralStatusActive, nil)

	_, err := f.payoutSvc.Disburse(context.Background(), f.broker.ID.String(), testNow)
	if !errors.Is(err, payoutdomain.ErrNothingDue) {
		t.Fatalf("expected ErrNothingDue, got %v", err)
	}
}
