package commands

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrSweepStalePickupsCommandIsNotConstructed = errors.New(
	"SweepStalePickupsCommand must be created via NewSweepStalePickupsCommand constructor",
)

// SweepStalePickupsCommand triggers one reconciliation sweep over
// uncollected shelf assignments, evaluated against the given instant.
type SweepStalePickupsCommand struct { //nolint:recvcheck //using for validation
	asOf time.Time

	guard guard.ConstructorGuard
}

// NewSweepStalePickupsCommand creates a sweep command evaluating staleness
// as of the given instant.
func NewSweepStalePickupsCommand(asOf time.Time) (SweepStalePickupsCommand, error) {
	cmd := SweepStalePickupsCommand{
		guard: guard.NewConstructorGuard(),
	}

	if asOf.IsZero() {
		return SweepStalePickupsCommand{}, errs.NewValueIsRequiredError("asOf")
	}
	cmd.asOf = asOf

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SweepStalePickupsCommand) Validate() error {
	return c.guard.Validate(ErrSweepStalePickupsCommandIsNotConstructed)
}

// AsOf returns the instant staleness is evaluated against.
func (c SweepStalePickupsCommand) AsOf() time.Time {
	return c.asOf
}
