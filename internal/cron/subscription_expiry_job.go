package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

type lapsedExpirer interface {
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

// SubscriptionExpiryJob moves active, non-renewing subscriptions whose end
// date has passed to expired.
type SubscriptionExpiryJob struct {
	store lapsedExpirer
	logg  *logger.Logger
	now   func() time.Time
}

func NewSubscriptionExpiryJob(store lapsedExpirer, logg *logger.Logger) (*SubscriptionExpiryJob, error) {
	if store == nil {
		return nil, fmt.Errorf("subscription store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &SubscriptionExpiryJob{store: store, logg: logg, now: time.Now}, nil
}

func (j *SubscriptionExpiryJob) Name() string { return "subscription_expiry" }

func (j *SubscriptionExpiryJob) Run(ctx context.Context) error {
	n, err := j.store.ExpireLapsed(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire lapsed subscriptions: %w", err)
	}
	if n > 0 {
		j.logg.Info(j.logg.WithField(ctx, "expired", n), "lapsed subscriptions expired")
	}
	return nil
}
