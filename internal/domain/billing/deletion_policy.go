package billing

import (
	"time"

	"github.com/restaurant/backend/internal/domain/shared"
)

// DefaultGraceDays is how long an unpaid bill must exist before it may be deleted
const DefaultGraceDays = 14

// DeletionPolicy decides whether a bill may be removed
type DeletionPolicy struct {
	GraceDays int
	Location  *time.Location
}

// NewDeletionPolicy returns a policy evaluated in the local time zone
func NewDeletionPolicy(graceDays int) DeletionPolicy {
	if graceDays <= 0 {
		graceDays = DefaultGraceDays
	}
	return DeletionPolicy{GraceDays: graceDays, Location: time.Local}
}

// Check fails for paid bills and for bills younger than GraceDays calendar days at now
func (p DeletionPolicy) Check(b *Bill, now time.Time) error {
	if b.Paid {
		return shared.NewDomainError(shared.CodeBillAlreadyPaid, "Cannot delete a paid bill.")
	}
	if p.daysBetween(b.CreatedAt, now) < p.GraceDays {
		return shared.NewDomainError(shared.CodeTooRecent, "Bill cannot be deleted as it was created less than 2 weeks ago.")
	}
	return nil
}

// daysBetween counts calendar days between the local dates of from and to
func (p DeletionPolicy) daysBetween(from, to time.Time) int {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
