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
	referraldomain "github.com/smallbiznis/lienclock/internal/referral/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&brokerdomain.Broker{},
		&referraldomain.Referral{},
		&referraldomain.EarningRecord{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestServices(t *testing.T) (brokerdomain.Service, referraldomain.Service) {
	t.Helper()
	db := newTestDB(t)
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
	referralSvc := NewService(ServiceParam{
		DB:        db,
		Log:       log,
		GenID:     node,
		BrokerSvc: brokerSvc,
		Policy:    payoutdomain.DefaultPolicy(),
	})
	return brokerSvc, referralSvc
}

func createTestBroker(t *testing.T, brokerSvc brokerdomain.Service, model payoutdomain.CommissionModel) *brokerdomain.Broker {
	t.Helper()
	broker, err := brokerSvc.Create(context.Background(), brokerdomain.CreateBrokerRequest{
		Name:            "Pat Broker",
		Email:           "pat@example.com",
		CommissionModel: model,
	})
	if err != nil {
		t.Fatalf("create broker: %v", err)
	}
	return broker
}

func createTestReferral(t *testing.T, brokerSvc brokerdomain.Service, referralSvc referraldomain.Service, model payoutdomain.CommissionModel) *referraldomain.Referral {
	t.Helper()
	broker := createTestBroker(t, brokerSvc, model)
	referral, err := referralSvc.Create(context.Background(), referraldomain.CreateReferralRequest{
		BrokerID:          broker.ID.String(),
		CustomerEmail:     "Customer@Example.com",
		CustomerPaymentID: "cus_123",
	})
	if err != nil {
		t.Fatalf("create referral: %v", err)
	}
	return referral
}

func TestCreateReferralNormalizesEmail(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	referral := createTestReferral(t, brokerSvc, referralSvc, payoutdomain.CommissionModelBounty)

	if referral.CustomerEmail != "customer@example.com" {
		t.Fatalf("expected lowercased email, got %q", referral.CustomerEmail)
	}
	if referral.Status != payoutdomain.ReferralStatusActive {
		t.Fatalf("expected ACTIVE status, got %q", referral.Status)
	}
	if referral.CommissionModel != payoutdomain.CommissionModelBounty {
		t.Fatalf("referral should inherit the broker's model, got %q", referral.CommissionModel)
	}
}

func TestCreateReferralRequiresCustomerIdentity(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	broker := createTestBroker(t, brokerSvc, payoutdomain.CommissionModelBounty)

	_, err := referralSvc.Create(context.Background(), referraldomain.CreateReferralRequest{
		BrokerID: broker.ID.String(),
	})
	if err != referraldomain.ErrInvalidCustomer {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestRecordPaymentBountyCreditsOnce(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	referral := createTestReferral(t, brokerSvc, referralSvc, payoutdomain.CommissionModelBounty)

	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := referralSvc.RecordPayment(context.Background(), referraldomain.RecordPaymentRequest{
		ReferralID: referral.ID,
		PaymentID:  "pay_1",
		PaidAt:     paidAt,
	})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if first == nil {
		t.Fatalf("first payment should credit the bounty")
	}
	if first.AmountCents != payoutdomain.DefaultBountyAmountCents {
		t.Fatalf("expected bounty %d, got %d", payoutdomain.DefaultBountyAmountCents, first.AmountCents)
	}

	second, err := referralSvc.RecordPayment(context.Background(), referraldomain.RecordPaymentRequest{
		ReferralID: referral.ID,
		PaymentID:  "pay_2",
		PaidAt:     paidAt.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if second != nil {
		t.Fatalf("bounty should only be credited once per customer")
	}
}

func TestRecordPaymentRecurringCreditsEachPayment(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	referral := createTestReferral(t, brokerSvc, referralSvc, payoutdomain.CommissionModelRecurring)

	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record, err := referralSvc.RecordPayment(context.Background(), referraldomain.RecordPaymentRequest{
			ReferralID: referral.ID,
			PaymentID:  "pay_" + string(rune('a'+i)),
			PaidAt:     paidAt.AddDate(0, i, 0),
		})
		if err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
		if record == nil {
			t.Fatalf("recurring payment %d should credit a commission", i+1)
		}
		if record.AmountCents != payoutdomain.DefaultRecurringAmountCents {
			t.Fatalf("expected %d cents, got %d", payoutdomain.DefaultRecurringAmountCents, record.AmountCents)
		}
	}
}

func TestRecordPaymentRejectsCanceledReferral(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	referral := createTestReferral(t, brokerSvc, referralSvc, payoutdomain.CommissionModelRecurring)

	if _, err := referralSvc.Cancel(context.Background(), referral.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := referralSvc.RecordPayment(context.Background(), referraldomain.RecordPaymentRequest{
		ReferralID: referral.ID,
		PaymentID:  "pay_late",
		PaidAt:     time.Now().UTC(),
	})
	if err != referraldomain.ErrReferralCanceled {
		t.Fatalf("expected ErrReferralCanceled, got %v", err)
	}
}

func TestCancelCascadesStatusToEarningRecords(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	referral := createTestReferral(t, brokerSvc, referralSvc, payoutdomain.CommissionModelRecurring)

	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	record, err := referralSvc.RecordPayment(context.Background(), referraldomain.RecordPaymentRequest{
		ReferralID: referral.ID,
		PaymentID:  "pay_1",
		PaidAt:     paidAt,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	canceled, err := referralSvc.Cancel(context.Background(), referral.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != payoutdomain.ReferralStatusCanceled {
		t.Fatalf("expected CANCELED, got %q", canceled.Status)
	}
	if canceled.CanceledAt == nil {
		t.Fatalf("expected canceled_at to be set")
	}

	if _, err := referralSvc.Cancel(context.Background(), referral.ID); err != referraldomain.ErrReferralCanceled {
		t.Fatalf("second cancel should fail with ErrReferralCanceled, got %v", err)
	}

	listed, err := referralSvc.ListByBroker(context.Background(), canceled.BrokerID.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != payoutdomain.ReferralStatusCanceled {
		t.Fatalf("listed referral should be canceled")
	}

	svc := referralSvc.(*Service)
	var stored referraldomain.EarningRecord
	if err := svc.db.First(&stored, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("load earning record: %v", err)
	}
	if stored.Status != payoutdomain.ReferralStatusCanceled {
		t.Fatalf("earning record status should cascade to CANCELED, got %q", stored.Status)
	}
}

func TestRecordPaymentBountySkipsConcurrentlyCommittedCredit(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	referral := createTestReferral(t, brokerSvc, referralSvc, payoutdomain.CommissionModelBounty)
	svc := referralSvc.(*Service)

	// A credit committed by another writer after the referral was loaded.
	committed := referraldomain.EarningRecord{
		ID:                svc.genID.Generate(),
		ReferralID:        referral.ID,
		BrokerID:          referral.BrokerID,
		CustomerEmail:     referral.CustomerEmail,
		CustomerPaymentID: referral.CustomerPaymentID,
		CommissionModel:   payoutdomain.CommissionModelBounty,
		AmountCents:       payoutdomain.DefaultBountyAmountCents,
		PaymentDate:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:            payoutdomain.ReferralStatusActive,
	}
	if err := svc.db.Create(&committed).Error; err != nil {
		t.Fatalf("insert committed credit: %v", err)
	}

	record, err := referralSvc.RecordPayment(context.Background(), referraldomain.RecordPaymentRequest{
		ReferralID: referral.ID,
		PaymentID:  "pay_2",
		PaidAt:     time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if record != nil {
		t.Fatalf("bounty already credited, expected no new record")
	}

	var count int64
	if err := svc.db.Model(&referraldomain.EarningRecord{}).
		Where("referral_id = ?", referral.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single bounty credit, got %d", count)
	}
}

func TestBountyUniqueIndexRejectsSecondCredit(t *testing.T) {
	brokerSvc, referralSvc := newTestServices(t)
	svc := referralSvc.(*Service)

	bounty := createTestReferral(t, brokerSvc, referralSvc, payoutdomain.CommissionModelBounty)
	paymentDate := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	makeRecord := func(referral *referraldomain.Referral, model payoutdomain.CommissionModel, amount int64) referraldomain.EarningRecord {
		return referraldomain.EarningRecord{
			ID:                svc.genID.Generate(),
			ReferralID:        referral.ID,
			BrokerID:          referral.BrokerID,
			CustomerEmail:     referral.CustomerEmail,
			CustomerPaymentID: referral.CustomerPaymentID,
			CommissionModel:   model,
			AmountCents:       amount,
			PaymentDate:       paymentDate,
			Status:            payoutdomain.ReferralStatusActive,
		}
	}

	first := makeRecord(bounty, payoutdomain.CommissionModelBounty, payoutdomain.DefaultBountyAmountCents)
	if err := svc.db.Create(&first).Error; err != nil {
		t.Fatalf("first bounty credit: %v", err)
	}
	dup := makeRecord(bounty, payoutdomain.CommissionModelBounty, payoutdomain.DefaultBountyAmountCents)
	if err := svc.db.Create(&dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second bounty credit should hit the unique index, got %v", err)
	}

	// The index is scoped to BOUNTY rows; recurring referrals take many.
	recurring, err := referralSvc.Create(context.Background(), referraldomain.CreateReferralRequest{
		BrokerID:      bounty.BrokerID.String(),
		CustomerEmail: "repeat@example.com",
	})
	if err != nil {
		t.Fatalf("create recurring referral: %v", err)
	}
	for i := 0; i < 2; i++ {
		record := makeRecord(recurring, payoutdomain.CommissionModelRecurring, payoutdomain.DefaultRecurringAmountCents)
		if err := svc.db.Create(&record).Error; err != nil {
			t.Fatalf("recurring credit %d: %v", i+1, err)
		}
	}
}
