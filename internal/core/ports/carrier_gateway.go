// Package ports defines the contracts between the application core and
// infrastructure: persistence repositories, the unit of work, the carrier
// gateway and outbound event publishing.
package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

var (
	// ErrCarrierRejected is returned when the carrier refuses the requested
	// shipment outright, e.g. a service not offered for the lane.
	ErrCarrierRejected = errors.New("carrier rejected the shipment request")

	// ErrAddressInvalid is returned when the carrier cannot deliver to the
	// destination address as given.
	ErrAddressInvalid = errors.New("carrier reported the destination address as invalid")

	// ErrInsufficientBalance is returned when the carrier account has no funds
	// left to purchase a label. Operations must top up the account.
	ErrInsufficientBalance = errors.New("carrier account has insufficient balance")

	// ErrCarrierRateLimited is returned when the carrier throttles our request
	// rate. Callers should back off and serialize subsequent calls to the
	// same carrier.
	ErrCarrierRateLimited = errors.New("carrier rate limit exceeded")

	// ErrRateUnavailable is returned when no carrier produced a usable rate.
	ErrRateUnavailable = errors.New("no carrier rate available")
)

// TransientError wraps a carrier failure that is worth retrying, such as a
// timeout or a 5xx response from the gateway.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient carrier failure: %s", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// NewTransientError wraps cause as a retryable carrier failure.
func NewTransientError(cause error) *TransientError {
	return &TransientError{Cause: cause}
}

// IsTransient reports whether err is a retryable carrier failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// CandidateService identifies one carrier service to request a rate from.
type CandidateService struct {
	Carrier string
	Service string
}

// RateRequest describes the parcel and lane a rate is needed for.
type RateRequest struct {
	Origin      kernel.Address
	Destination kernel.Address
	Parcel      kernel.Parcel
	Candidate   CandidateService
}

// CarrierRate is one quoted price for moving a parcel.
type CarrierRate struct {
	Carrier       string
	Service       string
	CostCents     int64
	EstimatedDays int
	DeliveryDate  time.Time
}

// PurchaseRequest asks the carrier to buy a label for a previously quoted rate.
type PurchaseRequest struct {
	Origin      kernel.Address
	Destination kernel.Address
	Parcel      kernel.Parcel
	Rate        CarrierRate
	// Reference is echoed back by the carrier on the label, used to correlate
	// the label with our shipment.
	Reference string
}

// PurchasedLabel is the carrier's confirmation of a bought label.
type PurchasedLabel struct {
	Carrier        string
	Service        string
	TrackingNumber string
	TrackingURL    string
	LabelURL       string
	CostCents      int64
}

// CarrierGateway is the outbound contract to the carrier integration layer.
// Implementations translate these calls into carrier-specific API traffic and
// normalize failures into the error taxonomy above.
type CarrierGateway interface {
	// GetRate quotes a single candidate service. Implementations must honor
	// ctx cancellation so callers can bound each quote with a timeout.
	GetRate(ctx context.Context, req RateRequest) (CarrierRate, error)

	// PurchaseLabel buys a shipping label for the given rate.
	PurchaseLabel(ctx context.Context, req PurchaseRequest) (PurchasedLabel, error)
}
