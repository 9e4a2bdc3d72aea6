package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// DueSelection identifies the events a disbursement will settle.
type DueSelection struct {
	EventIDs    []snowflake.ID
	AmountCents int64
}

// BacklogRow is one broker's due/on-hold position, used by the maturity worker.
type BacklogRow struct {
	BrokerID          snowflake.ID
	DueCents          int64
	OnHoldCents       int64
	OldestUnpaidAgeMs int64
}

// Repository loads and settles stored earning events. The ledger itself never
// touches storage; callers load events, build a ledger and discard it.
type Repository interface {
	ListEvents(ctx context.Context, db *gorm.DB, brokerID snowflake.ID) ([]EarningEvent, error)
	// SelectDue returns the unpaid ACTIVE events whose payment date is on or
	// before the maturity cutoff.
	SelectDue(ctx context.Context, db *gorm.DB, brokerID snowflake.ID, cutoff time.Time) (DueSelection, error)
	MarkPaid(ctx context.Context, db *gorm.DB, eventIDs []snowflake.ID, payoutID snowflake.ID, paidAt time.Time) error
	InsertPayout(ctx context.Context, db *gorm.DB, payout *Payout) error
	// Backlog aggregates due/on-hold amounts across all brokers.
	Backlog(ctx context.Context, db *gorm.DB, cutoff time.Time, now time.Time) ([]BacklogRow, error)
}
