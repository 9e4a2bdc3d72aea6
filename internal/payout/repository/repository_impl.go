package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	"gorm.io/gorm"
)

type RepositoryImpl struct{}

// Provide constructs the payout repository for the fx graph.
func Provide() payoutdomain.Repository {
	return &RepositoryImpl{}
}

type eventRow struct {
	ReferralID        string                       `gorm:"column:referral_id"`
	BrokerID          snowflake.ID                 `gorm:"column:broker_id"`
	CustomerEmail     string                       `gorm:"column:customer_email"`
	CustomerPaymentID string                       `gorm:"column:customer_payment_id"`
	CommissionModel   payoutdomain.CommissionModel `gorm:"column:commission_model"`
	AmountCents       int64                        `gorm:"column:amount_cents"`
	PaymentDate       time.Time                    `gorm:"column:payment_date"`
	Status            payoutdomain.ReferralStatus  `gorm:"column:status"`
	PaidAt            *time.Time                   `gorm:"column:paid_at"`
}

func (r *RepositoryImpl) ListEvents(ctx context.Context, db *gorm.DB, brokerID snowflake.ID) ([]payoutdomain.EarningEvent, error) {
	var rows []eventRow
	if err := db.WithContext(ctx).Raw(
		`SELECT referral_id, broker_id, customer_email, customer_payment_id,
		        commission_model, amount_cents, payment_date, status, paid_at
		 FROM earning_records
		 WHERE broker_id = ?
		 ORDER BY created_at ASC, id ASC`,
		brokerID,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]payoutdomain.EarningEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, payoutdomain.EarningEvent{
			ReferralID:        row.ReferralID,
			BrokerID:          row.BrokerID,
			CustomerEmail:     row.CustomerEmail,
			CustomerPaymentID: row.CustomerPaymentID,
			CommissionModel:   row.CommissionModel,
			AmountCents:       row.AmountCents,
			PaymentDate:       row.PaymentDate,
			Status:            row.Status,
			PaidAt:            row.PaidAt,
		})
	}
	return events, nil
}

func (r *RepositoryImpl) SelectDue(ctx context.Context, db *gorm.DB, brokerID snowflake.ID, cutoff time.Time) (payoutdomain.DueSelection, error) {
	var rows []struct {
		ID          snowflake.ID `gorm:"column:id"`
		AmountCents int64        `gorm:"column:amount_cents"`
	}
	if err := db.WithContext(ctx).Raw(
		`SELECT id, amount_cents
		 FROM earning_records
		 WHERE broker_id = ?
		   AND status = ?
		   AND paid_at IS NULL
		   AND payment_date <= ?
		 ORDER BY payment_date ASC`,
		brokerID,
		payoutdomain.ReferralStatusActive,
		cutoff,
	).Scan(&rows).Error; err != nil {
		return payoutdomain.DueSelection{}, err
	}

	selection := payoutdomain.DueSelection{}
	for _, row := range rows {
		selection.EventIDs = append(selection.EventIDs, row.ID)
		selection.AmountCents += row.AmountCents
	}
	return selection, nil
}

func (r *RepositoryImpl) MarkPaid(ctx context.Context, db *gorm.DB, eventIDs []snowflake.ID, payoutID snowflake.ID, paidAt time.Time) error {
	if len(eventIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`UPDATE earning_records
		 SET paid_at = ?, payout_id = ?
		 WHERE id IN ? AND paid_at IS NULL`,
		paidAt,
		payoutID,
		eventIDs,
	).Error
}

func (r *RepositoryImpl) InsertPayout(ctx context.Context, db *gorm.DB, payout *payoutdomain.Payout) error {
	return db.WithContext(ctx).Create(payout).Error
}

func (r *RepositoryImpl) Backlog(ctx context.Context, db *gorm.DB, cutoff time.Time, now time.Time) ([]payoutdomain.BacklogRow, error) {
	var rows []struct {
		BrokerID    snowflake.ID `gorm:"column:broker_id"`
		DueCents    int64        `gorm:"column:due_cents"`
		OnHoldCents int64        `gorm:"column:on_hold_cents"`
		OldestDue   *time.Time   `gorm:"column:oldest_due"`
	}
	if err := db.WithContext(ctx).Raw(
		`SELECT broker_id,
		        SUM(CASE WHEN payment_date <= ? THEN amount_cents ELSE 0 END) AS due_cents,
		        SUM(CASE WHEN payment_date > ? THEN amount_cents ELSE 0 END) AS on_hold_cents,
		        MIN(CASE WHEN payment_date <= ? THEN payment_date END) AS oldest_due
		 FROM earning_records
		 WHERE status = ? AND paid_at IS NULL
		 GROUP BY broker_id`,
		cutoff,
		cutoff,
		cutoff,
		payoutdomain.ReferralStatusActive,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	backlog := make([]payoutdomain.BacklogRow, 0, len(rows))
	for _, row := range rows {
		entry := payoutdomain.BacklogRow{
			BrokerID:    row.BrokerID,
			DueCents:    row.DueCents,
			OnHoldCents: row.OnHoldCents,
		}
		if row.OldestDue != nil {
			entry.OldestUnpaidAgeMs = now.Sub(*row.OldestDue).Milliseconds()
		}
		backlog = append(backlog, entry)
	}
	return backlog, nil
}
