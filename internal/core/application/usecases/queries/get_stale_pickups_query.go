package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetStalePickupsQueryIsNotConstructed = errors.New(
	"GetStalePickupsQuery must be created via NewGetStalePickupsQuery constructor",
)

// GetStalePickupsQuery lists active shelf assignments placed before a cutoff
// instant. It backs the operator-facing stale pickup report.
type GetStalePickupsQuery struct { //nolint:recvcheck //using for validation
	cutoff time.Time

	guard guard.ConstructorGuard
}

// NewGetStalePickupsQuery creates a query for assignments older than cutoff.
func NewGetStalePickupsQuery(cutoff time.Time) (GetStalePickupsQuery, error) {
	if cutoff.IsZero() {
		return GetStalePickupsQuery{}, errs.NewValueIsRequiredError("cutoff")
	}

	return GetStalePickupsQuery{
		cutoff: cutoff,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStalePickupsQuery) Validate() error {
	return q.guard.Validate(ErrGetStalePickupsQueryIsNotConstructed)
}

// Cutoff returns the staleness cutoff instant.
func (q GetStalePickupsQuery) Cutoff() time.Time {
	return q.cutoff
}

// GetStalePickupsQueryResponse is one uncollected assignment in the report.
type GetStalePickupsQueryResponse struct {
	AssignmentID kernel.UUID
	ShelfCode    string
	OrderID      kernel.UUID
	AssignedAt   time.Time
	WaitingFor   time.Duration
}
