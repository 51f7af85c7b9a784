package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shelf"
)

// ShelfRepository defines the persistence contract for pickup shelves and
// their slot assignments.
//
// ClaimSlot and ReleaseSlot are the only ways occupancy changes. ClaimSlot
// performs the capacity check and the increment as one atomic storage
// operation, so concurrent claims on the last free slot resolve to exactly
// one winner.
type ShelfRepository interface {
	// Add persists a new shelf aggregate to storage.
	Add(ctx context.Context, aggregate *shelf.Shelf) error

	// Get retrieves a shelf aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*shelf.Shelf, error)

	// GetAll retrieves every shelf ordered by code.
	GetAll(ctx context.Context) ([]*shelf.Shelf, error)

	// ClaimSlot atomically occupies one free slot on the shelf. Returns
	// shelf.ErrShelfFull when no slot is free at the moment of the attempt.
	ClaimSlot(ctx context.Context, shelfID kernel.UUID) error

	// ReleaseSlot atomically frees one occupied slot on the shelf. Returns
	// shelf.ErrShelfEmpty when the shelf has no occupancy.
	ReleaseSlot(ctx context.Context, shelfID kernel.UUID) error

	// AddAssignment persists a new slot assignment.
	AddAssignment(ctx context.Context, assignment *shelf.Assignment) error

	// UpdateAssignment persists changes to an existing slot assignment.
	UpdateAssignment(ctx context.Context, assignment *shelf.Assignment) error

	// GetAssignment retrieves an assignment by its unique identifier.
	GetAssignment(ctx context.Context, id kernel.UUID) (*shelf.Assignment, error)

	// GetActiveAssignmentByOrder retrieves the active assignment holding the
	// given order, if any.
	GetActiveAssignmentByOrder(ctx context.Context, orderID kernel.UUID) (*shelf.Assignment, error)

	// GetAssignmentsOlderThan retrieves active assignments placed before the
	// cutoff instant, oldest first.
	GetAssignmentsOlderThan(ctx context.Context, cutoff time.Time) ([]*shelf.Assignment, error)
}
