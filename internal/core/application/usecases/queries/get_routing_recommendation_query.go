package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetRoutingRecommendationQueryIsNotConstructed = errors.New(
	"GetRoutingRecommendationQuery must be created via NewGetRoutingRecommendationQuery constructor",
)

// GetRoutingRecommendationQuery asks for a ship-vs-pickup recommendation for
// one order. Purely advisory; no resource is committed.
type GetRoutingRecommendationQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetRoutingRecommendationQuery creates a recommendation query for the
// given order.
func NewGetRoutingRecommendationQuery(orderID kernel.UUID) (GetRoutingRecommendationQuery, error) {
	query := GetRoutingRecommendationQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := orderID.Validate(); err != nil {
		return GetRoutingRecommendationQuery{}, err
	}
	query.orderID = orderID

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRoutingRecommendationQuery) Validate() error {
	return q.guard.Validate(ErrGetRoutingRecommendationQueryIsNotConstructed)
}

// OrderID returns the identifier of the order being evaluated.
func (q GetRoutingRecommendationQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetRoutingRecommendationQueryResponse is the advisory outcome together with
// the cost factors that produced it.
type GetRoutingRecommendationQueryResponse struct {
	OrderID        kernel.UUID
	Recommendation string
	Reason         string
	Carrier        string
	Service        string
	CostCents      int64
	EstimatedDays  int
	DistanceKm     float64
	PartialQuotes  bool
}
