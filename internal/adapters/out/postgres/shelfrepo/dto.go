// Package shelfrepo provides data transfer objects and mapping functions for
// pickup shelf persistence. Shelf occupancy is mutated exclusively through
// conditional updates so concurrent claims never oversubscribe a shelf.
package shelfrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shelf"

	"github.com/google/uuid"
)

// ShelfDTO represents the database structure for persisting shelf aggregates.
type ShelfDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code     string    `gorm:"uniqueIndex"`
	Name     string
	Capacity int
	Occupied int
}

// TableName specifies the database table name for shelf entities.
func (ShelfDTO) TableName() string {
	return "shelves"
}

// AssignmentDTO represents one shelf slot occupancy record. An assignment is
// active while both PickedUpAt and ForcedShipmentID are null.
type AssignmentDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShelfID          uuid.UUID `gorm:"type:uuid;index"`
	OrderID          uuid.UUID `gorm:"type:uuid;index"`
	AssignedAt       time.Time `gorm:"index"`
	PickedUpAt       *time.Time
	ForcedShipmentID *uuid.UUID `gorm:"type:uuid"`
}

// TableName specifies the database table name for shelf assignments.
func (AssignmentDTO) TableName() string {
	return "shelf_assignments"
}

// fromDomain converts a shelf domain aggregate to its database representation.
func fromDomain(aggregate *shelf.Shelf) ShelfDTO {
	return ShelfDTO{
		ID:       aggregate.ID().Bytes(),
		Code:     aggregate.Code(),
		Name:     aggregate.Name(),
		Capacity: aggregate.Capacity(),
		Occupied: aggregate.Occupied(),
	}
}

// toDomain converts a database DTO to a shelf domain aggregate.
func toDomain(dto ShelfDTO) (*shelf.Shelf, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return shelf.RestoreShelf(id, dto.Code, dto.Name, dto.Capacity, dto.Occupied)
}

// assignmentFromDomain converts an assignment to its database representation.
func assignmentFromDomain(assignment *shelf.Assignment) AssignmentDTO {
	var forcedShipmentID *uuid.UUID
	if id := assignment.ForcedShipmentID(); id != nil {
		raw := id.Bytes()
		forcedShipmentID = &raw
	}

	return AssignmentDTO{
		ID:               assignment.ID().Bytes(),
		ShelfID:          assignment.ShelfID().Bytes(),
		OrderID:          assignment.OrderID().Bytes(),
		AssignedAt:       assignment.AssignedAt(),
		PickedUpAt:       assignment.PickedUpAt(),
		ForcedShipmentID: forcedShipmentID,
	}
}

// assignmentToDomain converts a database DTO to an assignment.
func assignmentToDomain(dto AssignmentDTO) (*shelf.Assignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	shelfID, err := kernel.UUIDFromBytes(dto.ShelfID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var forcedShipmentID *kernel.UUID
	if dto.ForcedShipmentID != nil {
		shipmentID, shipErr := kernel.UUIDFromBytes((*dto.ForcedShipmentID)[:])
		if shipErr != nil {
			return nil, shipErr
		}
		forcedShipmentID = &shipmentID
	}

	return shelf.RestoreAssignment(id, shelfID, orderID, dto.AssignedAt, dto.PickedUpAt, forcedShipmentID)
}
