package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/lienclock/internal/audit/domain"
	brokerdomain "github.com/smallbiznis/lienclock/internal/broker/domain"
	"github.com/smallbiznis/lienclock/internal/cache"
	"github.com/smallbiznis/lienclock/internal/events"
	"github.com/smallbiznis/lienclock/internal/observability/metrics"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      payoutdomain.Repository
	BrokerSvc brokerdomain.Service
	Policy    payoutdomain.PayoutPolicy
	Outbox    *events.Outbox      `optional:"true"`
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	repo      payoutdomain.Repository
	brokerSvc brokerdomain.Service
	policy    payoutdomain.PayoutPolicy
	outbox    *events.Outbox
	auditSvc  auditdomain.Service
	brokers   *cache.TTLCache[string, *brokerdomain.Broker]
}

const brokerCacheTTL = 30 * time.Second

func NewService(p ServiceParam) payoutdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("payout.service"),

		genID:     p.GenID,
		repo:      p.Repo,
		brokerSvc: p.BrokerSvc,
		policy:    p.Policy,
		outbox:    p.Outbox,
		auditSvc:  p.AuditSvc,
		brokers:   cache.NewTTLCache[string, *brokerdomain.Broker](),
	}
}

// BrokerSnapshot builds a fresh ledger from the broker's stored events and
// returns its position as of now. The ledger instance never outlives the call.
func (s *Service) BrokerSnapshot(ctx context.Context, brokerID string, now time.Time) (payoutdomain.LedgerSnapshot, error) {
	broker, err := s.loadBroker(ctx, brokerID)
	if err != nil {
		return payoutdomain.LedgerSnapshot{}, err
	}

	eventList, err := s.repo.ListEvents(ctx, s.db, broker.ID)
	if err != nil {
		return payoutdomain.LedgerSnapshot{}, err
	}

	ledger := payoutdomain.NewBrokerLedger(broker.ID, broker.Name, broker.Email, broker.CommissionModel, s.policy)
	for _, event := range eventList {
		ledger.AddEvent(event)
	}
	return ledger.Snapshot(now.UTC()), nil
}

// Disburse settles everything currently due in one transaction: events get
// paid_at stamped, a payout row records the transfer, and an outbox event
// notifies downstream consumers.
func (s *Service) Disburse(ctx context.Context, brokerID string, now time.Time) (*payoutdomain.Payout, error) {
	broker, err := s.loadBroker(ctx, brokerID)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	cutoff := now.Add(-s.policy.HoldPeriod())

	var payout *payoutdomain.Payout
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		selection, err := s.repo.SelectDue(ctx, tx, broker.ID, cutoff)
		if err != nil {
			return err
		}
		if len(selection.EventIDs) == 0 {
			return payoutdomain.ErrNothingDue
		}

		payout = &payoutdomain.Payout{
			ID:          s.genID.Generate(),
			BrokerID:    broker.ID,
			AmountCents: selection.AmountCents,
			EventCount:  len(selection.EventIDs),
			PaidAt:      now,
		}
		if err := s.repo.InsertPayout(ctx, tx, payout); err != nil {
			return err
		}
		if err := s.repo.MarkPaid(ctx, tx, selection.EventIDs, payout.ID, now); err != nil {
			return err
		}

		if s.outbox != nil {
			return s.outbox.PublishTx(ctx, tx, events.Event{
				Type:      events.EventPayoutDisbursed,
				DedupeKey: "payout:" + payout.ID.String(),
				Payload: events.PayoutPayload{
					PayoutID:    payout.ID.String(),
					BrokerID:    broker.ID.String(),
					AmountCents: payout.AmountCents,
					EventCount:  payout.EventCount,
				}.ToMap(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		targetID := payout.ID.String()
		_ = s.auditSvc.AuditLog(ctx, nil, "payout.disburse", "payout", &targetID, map[string]any{
			"broker_id":    broker.ID.String(),
			"amount_cents": payout.AmountCents,
			"event_count":  payout.EventCount,
		})
	}

	metrics.Payout().ObserveDisbursement(broker.ID.String(), payout.AmountCents)

	s.log.Info("payout disbursed",
		zap.String("payout_id", payout.ID.String()),
		zap.String("broker_id", broker.ID.String()),
		zap.Int64("amount_cents", payout.AmountCents),
		zap.Int("event_count", payout.EventCount),
	)
	return payout, nil
}

func (s *Service) loadBroker(ctx context.Context, brokerID string) (*brokerdomain.Broker, error) {
	if broker, ok := s.brokers.Get(brokerID); ok {
		return broker, nil
	}
	broker, err := s.brokerSvc.GetByID(ctx, brokerID)
	if err != nil {
		return nil, err
	}
	s.brokers.Set(brokerID, broker, brokerCacheTTL)
	return broker, nil
}
