package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// RateShopResult is the ranked outcome of one rate-shopping round.
// Partial is true when at least one candidate was omitted because its call
// failed or timed out.
type RateShopResult struct {
	Rates   []ports.CarrierRate
	Partial bool
}

// Best returns the cheapest rate, or false when the result is empty.
func (r RateShopResult) Best() (ports.CarrierRate, bool) {
	if len(r.Rates) == 0 {
		return ports.CarrierRate{}, false
	}
	return r.Rates[0], true
}

// RateShopper collects quotes from candidate carrier services concurrently.
//
// Fan-out is bounded by maxConcurrency and each carrier call gets its own
// timeout. A failing or slow carrier is omitted from the result rather than
// failing the round; only when every candidate fails does ShopRates return
// ports.ErrRateUnavailable. No retries happen here, retry policy belongs to
// the caller.
type RateShopper struct {
	gateway        ports.CarrierGateway
	maxConcurrency int
	perCallTimeout time.Duration
	logger         *slog.Logger
}

// NewRateShopper creates a RateShopper bound to the given gateway.
func NewRateShopper(
	gateway ports.CarrierGateway,
	maxConcurrency int,
	perCallTimeout time.Duration,
	logger *slog.Logger,
) (*RateShopper, error) {
	if gateway == nil {
		return nil, errs.NewValueIsRequiredError("gateway")
	}
	if maxConcurrency <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("maxConcurrency", maxConcurrency, 1, 64)
	}
	if perCallTimeout <= 0 {
		return nil, errs.NewValueIsRequiredError("perCallTimeout")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &RateShopper{
		gateway:        gateway,
		maxConcurrency: maxConcurrency,
		perCallTimeout: perCallTimeout,
		logger:         logger.With("component", "rate_shopper"),
	}, nil
}

// ShopRates quotes every candidate service and returns the usable rates
// sorted ascending by cost, then estimated days, then carrier name.
// The aggregation waits for every candidate's response or timeout; it never
// short-circuits on first success because rates must be compared.
func (s *RateShopper) ShopRates(
	ctx context.Context,
	origin, destination kernel.Address,
	parcel kernel.Parcel,
	candidates []ports.CandidateService,
) (RateShopResult, error) {
	if len(candidates) == 0 {
		return RateShopResult{}, errs.NewValueIsRequiredError("candidates")
	}

	quotes := make([]*ports.CarrierRate, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.perCallTimeout)
			defer cancel()

			rate, err := s.gateway.GetRate(callCtx, ports.RateRequest{
				Origin:      origin,
				Destination: destination,
				Parcel:      parcel,
				Candidate:   candidate,
			})
			if err != nil {
				s.logger.Warn("carrier quote omitted",
					"carrier", candidate.Carrier,
					"service", candidate.Service,
					"error", err)
				return nil
			}

			quotes[i] = &rate
			return nil
		})
	}

	// Goroutines swallow their own failures, Wait only propagates panics.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return RateShopResult{}, err
	}

	result := RateShopResult{}
	for _, quote := range quotes {
		if quote != nil {
			result.Rates = append(result.Rates, *quote)
		}
	}
	result.Partial = len(result.Rates) < len(candidates)

	if len(result.Rates) == 0 {
		return RateShopResult{}, ports.ErrRateUnavailable
	}

	sort.Slice(result.Rates, func(i, j int) bool {
		a, b := result.Rates[i], result.Rates[j]
		if a.CostCents != b.CostCents {
			return a.CostCents < b.CostCents
		}
		if a.EstimatedDays != b.EstimatedDays {
			return a.EstimatedDays < b.EstimatedDays
		}
		return a.Carrier < b.Carrier
	})

	return result, nil
}
