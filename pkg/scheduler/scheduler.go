package scheduler

import (
	"context"
	"time"

	"github.com/rvallim/raffle-allocation/pkg/models"
)

// Scheduler defines the interface for a component that schedules an order's
// expiration check for later processing.
type Scheduler interface {
	// ScheduleExpiration enqueues an expiration check for the order after the
	// given delay.
	ScheduleExpiration(ctx context.Context, order *models.Order, delay time.Duration) error
}
