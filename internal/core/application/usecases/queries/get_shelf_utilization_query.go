// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetShelfUtilizationQueryIsNotConstructed = errors.New(
	"GetShelfUtilizationQuery must be created via NewGetShelfUtilizationQuery constructor",
)

// GetShelfUtilizationQuery retrieves occupancy figures for every pickup shelf.
type GetShelfUtilizationQuery struct {
	guard guard.ConstructorGuard
}

// NewGetShelfUtilizationQuery creates a query for the shelf utilization report.
func NewGetShelfUtilizationQuery() GetShelfUtilizationQuery {
	return GetShelfUtilizationQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetShelfUtilizationQuery) Validate() error {
	return q.guard.Validate(ErrGetShelfUtilizationQueryIsNotConstructed)
}

// ShelfUtilization is one shelf's line in the utilization report.
type ShelfUtilization struct {
	ID        kernel.UUID
	Code      string
	Name      string
	Capacity  int
	Occupied  int
	FreeSlots int
}

// GetShelfUtilizationQueryResponse aggregates occupancy across all shelves.
type GetShelfUtilizationQueryResponse struct {
	Shelves            []ShelfUtilization
	TotalOccupied      int
	TotalAvailable     int
	UtilizationPercent float64
}
