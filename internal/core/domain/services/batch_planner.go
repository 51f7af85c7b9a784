package services

import (
	"errors"
	"fmt"
	"sort"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// ShipmentGroup is a set of orders that can travel under one carrier label:
// same country, postal prefix and service level, with their parcels combined
// under the carrier weight limit. Destination is the first member's address.
type ShipmentGroup struct {
	Orders       []*order.Order
	Destination  kernel.Address
	Parcel       kernel.Parcel
	ServiceLevel string
}

// OrderIDs returns the identifiers of the group members.
func (g ShipmentGroup) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(g.Orders))
	for _, o := range g.Orders {
		ids = append(ids, o.ID())
	}
	return ids
}

// BatchPlanner splits a batch of orders into destination and weight
// compatible shipment groups.
type BatchPlanner struct {
	zipPrefixLen        int
	maxGroupWeightGrams int
}

// NewBatchPlanner creates a BatchPlanner with the given postal prefix length
// and carrier weight limit per label.
func NewBatchPlanner(zipPrefixLen, maxGroupWeightGrams int) (BatchPlanner, error) {
	if zipPrefixLen <= 0 {
		return BatchPlanner{}, errs.NewValueIsInvalidErrorWithCause("zipPrefixLen",
			errors.New("zip prefix length must be greater than 0"))
	}
	if maxGroupWeightGrams <= 0 {
		return BatchPlanner{}, errs.NewValueIsInvalidErrorWithCause("maxGroupWeightGrams",
			errors.New("weight limit must be greater than 0"))
	}

	return BatchPlanner{
		zipPrefixLen:        zipPrefixLen,
		maxGroupWeightGrams: maxGroupWeightGrams,
	}, nil
}

// Plan groups the orders greedily in input order within each compatibility
// key. An order heavier than the weight limit on its own gets a group of its
// own. Group ordering is deterministic: keys sorted lexicographically.
func (p BatchPlanner) Plan(orders []*order.Order) ([]ShipmentGroup, error) {
	if len(orders) == 0 {
		return nil, errs.NewValueIsRequiredError("orders")
	}

	byKey := make(map[string][]*order.Order)
	keys := make([]string, 0)

	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}

		dest := o.Destination()
		key := fmt.Sprintf("%s|%s|%s", dest.Country(), dest.ZipPrefix(p.zipPrefixLen), o.ServiceLevel())
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], o)
	}

	sort.Strings(keys)

	var groups []ShipmentGroup
	for _, key := range keys {
		packed, err := p.pack(byKey[key])
		if err != nil {
			return nil, err
		}
		groups = append(groups, packed...)
	}

	return groups, nil
}

func (p BatchPlanner) pack(orders []*order.Order) ([]ShipmentGroup, error) {
	var groups []ShipmentGroup
	var current ShipmentGroup
	open := false

	for _, o := range orders {
		parcel := o.Parcel()

		if open && current.Parcel.WeightGrams()+parcel.WeightGrams() <= p.maxGroupWeightGrams {
			combined, err := current.Parcel.Combine(parcel)
			if err != nil {
				return nil, err
			}
			current.Parcel = combined
			current.Orders = append(current.Orders, o)
			continue
		}

		if open {
			groups = append(groups, current)
		}
		current = ShipmentGroup{
			Orders:       []*order.Order{o},
			Destination:  o.Destination(),
			Parcel:       parcel,
			ServiceLevel: o.ServiceLevel(),
		}
		open = true
	}

	if open {
		groups = append(groups, current)
	}

	return groups, nil
}
