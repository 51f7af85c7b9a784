package services

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ErrOrderAlreadyRouted is returned when a recommendation is requested for an
// order whose routing decision has already been committed.
var ErrOrderAlreadyRouted = errors.New("order routing is already committed")

// RouteMode is the advised fulfillment channel.
type RouteMode int

const (
	// RouteShip advises purchasing a carrier shipment.
	RouteShip RouteMode = iota + 1
	// RoutePickup advises placing the order on a pickup shelf.
	RoutePickup
)

func (m RouteMode) String() string {
	switch m {
	case RouteShip:
		return "ship"
	case RoutePickup:
		return "pickup"
	default:
		return "unknown"
	}
}

// Reason explains which rule produced a recommendation.
type Reason string

const (
	ReasonCustomerRequestedPickup Reason = "customer_requested_pickup"
	ReasonPickupSavings           Reason = "pickup_savings"
	ReasonNoShelfCapacity         Reason = "no_shelf_capacity"
	ReasonAddressUnverified       Reason = "address_unverified"
	ReasonOutsideServiceRadius    Reason = "outside_service_radius"
	ReasonCheapestRate            Reason = "cheapest_rate"
)

// Recommendation is the advisory outcome; it never commits a resource.
// Rate carries the cheapest quote backing the decision and is nil only for a
// pickup advised purely on the customer's request.
type Recommendation struct {
	Mode       RouteMode
	Reason     Reason
	Rate       *ports.CarrierRate
	DistanceKm float64
	Partial    bool
}

// RoutingAdvisor is the pure ship-vs-pickup decision function.
//
// Decision rules in priority order: an unverifiable destination always ships,
// an explicit pickup request wins when a slot is free, a nearby destination
// with a free slot and a ship cost at or above the savings threshold is asked
// to collect, everything else ships on the cheapest rate.
type RoutingAdvisor struct {
	serviceRadiusKm             float64
	pickupSavingsThresholdCents int64
}

// NewRoutingAdvisor creates a RoutingAdvisor with the configured pickup
// service radius and savings threshold.
func NewRoutingAdvisor(serviceRadiusKm float64, pickupSavingsThresholdCents int64) (RoutingAdvisor, error) {
	if serviceRadiusKm <= 0 {
		return RoutingAdvisor{}, errs.NewValueIsInvalidErrorWithCause("serviceRadiusKm",
			errors.New("service radius must be greater than 0"))
	}
	if pickupSavingsThresholdCents < 0 {
		return RoutingAdvisor{}, errs.NewValueIsInvalidErrorWithCause("pickupSavingsThresholdCents",
			errors.New("savings threshold must not be negative"))
	}

	return RoutingAdvisor{
		serviceRadiusKm:             serviceRadiusKm,
		pickupSavingsThresholdCents: pickupSavingsThresholdCents,
	}, nil
}

// Recommend produces a routing recommendation for an order awaiting routing.
// rates is the already collected quote round for the order's lane;
// shelfHasCapacity reports whether any shelf currently has a free slot.
func (a RoutingAdvisor) Recommend(
	aggregate *order.Order,
	origin kernel.Address,
	rates RateShopResult,
	shelfHasCapacity bool,
) (Recommendation, error) {
	if err := aggregate.Validate(); err != nil {
		return Recommendation{}, err
	}
	if !aggregate.IsPendingRouting() {
		return Recommendation{}, ErrOrderAlreadyRouted
	}

	destination := aggregate.Destination()

	if !destination.IsVerified() {
		return a.ship(ReasonAddressUnverified, rates, 0)
	}

	distanceKm, err := origin.DistanceKm(destination)
	if err != nil {
		return Recommendation{}, err
	}

	if aggregate.PickupRequested() && shelfHasCapacity {
		return Recommendation{
			Mode:       RoutePickup,
			Reason:     ReasonCustomerRequestedPickup,
			Rate:       bestOrNil(rates),
			DistanceKm: distanceKm,
			Partial:    rates.Partial,
		}, nil
	}

	if !shelfHasCapacity {
		return a.ship(ReasonNoShelfCapacity, rates, distanceKm)
	}

	if distanceKm > a.serviceRadiusKm {
		return a.ship(ReasonOutsideServiceRadius, rates, distanceKm)
	}

	best, ok := rates.Best()
	if ok && best.CostCents >= a.pickupSavingsThresholdCents {
		return Recommendation{
			Mode:       RoutePickup,
			Reason:     ReasonPickupSavings,
			Rate:       &best,
			DistanceKm: distanceKm,
			Partial:    rates.Partial,
		}, nil
	}

	return a.ship(ReasonCheapestRate, rates, distanceKm)
}

func (a RoutingAdvisor) ship(reason Reason, rates RateShopResult, distanceKm float64) (Recommendation, error) {
	best, ok := rates.Best()
	if !ok {
		return Recommendation{}, ports.ErrRateUnavailable
	}

	return Recommendation{
		Mode:       RouteShip,
		Reason:     reason,
		Rate:       &best,
		DistanceKm: distanceKm,
		Partial:    rates.Partial,
	}, nil
}

func bestOrNil(rates RateShopResult) *ports.CarrierRate {
	if best, ok := rates.Best(); ok {
		return &best
	}
	return nil
}
