package queries

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// GetRoutingRecommendationQueryHandler produces a ship-vs-pickup
// recommendation for one order.
//
// Unlike the SQL read models this handler works through the domain: it loads
// the order aggregate, shops rates once per evaluation and feeds the advisor
// with that single quote round, so a recommendation never triggers duplicate
// carrier calls. Callers bound the evaluation with the request context
// deadline; overrunning it fails the recommendation rather than guessing.
type GetRoutingRecommendationQueryHandler struct {
	orders     ports.OrderRepository
	shelves    ports.ShelfRepository
	shopper    *services.RateShopper
	advisor    services.RoutingAdvisor
	origin     kernel.Address
	candidates []ports.CandidateService
}

// NewGetRoutingRecommendationQueryHandler creates a handler for routing
// recommendation queries.
func NewGetRoutingRecommendationQueryHandler(
	orders ports.OrderRepository,
	shelves ports.ShelfRepository,
	shopper *services.RateShopper,
	advisor services.RoutingAdvisor,
	origin kernel.Address,
	candidates []ports.CandidateService,
) (GetRoutingRecommendationQueryHandler, error) {
	if orders == nil {
		return GetRoutingRecommendationQueryHandler{}, errs.NewValueIsRequiredError("orders")
	}
	if shelves == nil {
		return GetRoutingRecommendationQueryHandler{}, errs.NewValueIsRequiredError("shelves")
	}
	if shopper == nil {
		return GetRoutingRecommendationQueryHandler{}, errs.NewValueIsRequiredError("shopper")
	}
	if !origin.IsVerified() {
		return GetRoutingRecommendationQueryHandler{}, errs.NewValueIsRequiredError("origin")
	}
	if len(candidates) == 0 {
		return GetRoutingRecommendationQueryHandler{}, errs.NewValueIsRequiredError("candidates")
	}

	return GetRoutingRecommendationQueryHandler{
		orders:     orders,
		shelves:    shelves,
		shopper:    shopper,
		advisor:    advisor,
		origin:     origin,
		candidates: candidates,
	}, nil
}

// Handle evaluates the order and returns the recommendation with its cost
// factors.
func (h GetRoutingRecommendationQueryHandler) Handle(
	ctx context.Context,
	query GetRoutingRecommendationQuery,
) (GetRoutingRecommendationQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetRoutingRecommendationQueryResponse{}, err
	}

	aggregate, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return GetRoutingRecommendationQueryResponse{}, err
	}

	hasCapacity, err := h.anyShelfHasCapacity(ctx)
	if err != nil {
		return GetRoutingRecommendationQueryResponse{}, err
	}

	rates, err := h.shopper.ShopRates(ctx, h.origin, aggregate.Destination(), aggregate.Parcel(), h.candidates)
	if err != nil && !errors.Is(err, ports.ErrRateUnavailable) {
		return GetRoutingRecommendationQueryResponse{}, err
	}

	recommendation, err := h.advisor.Recommend(aggregate, h.origin, rates, hasCapacity)
	if err != nil {
		return GetRoutingRecommendationQueryResponse{}, err
	}

	response := GetRoutingRecommendationQueryResponse{
		OrderID:        aggregate.ID(),
		Recommendation: recommendation.Mode.String(),
		Reason:         string(recommendation.Reason),
		DistanceKm:     recommendation.DistanceKm,
		PartialQuotes:  recommendation.Partial,
	}

	if recommendation.Rate != nil {
		response.Carrier = recommendation.Rate.Carrier
		response.Service = recommendation.Rate.Service
		response.CostCents = recommendation.Rate.CostCents
		response.EstimatedDays = recommendation.Rate.EstimatedDays
	}

	return response, nil
}

func (h GetRoutingRecommendationQueryHandler) anyShelfHasCapacity(ctx context.Context) (bool, error) {
	shelves, err := h.shelves.GetAll(ctx)
	if err != nil {
		return false, err
	}

	for _, s := range shelves {
		if s.HasCapacity() {
			return true, nil
		}
	}
	return false, nil
}
