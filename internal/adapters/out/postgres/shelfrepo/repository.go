package shelfrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shelf"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormShelfRepository implements ShelfRepository using GORM.
//
// Occupancy changes go through single conditional UPDATE statements. The
// capacity check and the increment happen in the same statement, so two
// concurrent claims on the last free slot resolve to exactly one winner at
// the database, not in application code.
type GormShelfRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormShelfRepository creates a new GORM shelf repository.
func NewGormShelfRepository(db *gorm.DB, tracker aggregateTracker) *GormShelfRepository {
	return &GormShelfRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new shelf to the database.
func (r *GormShelfRepository) Add(ctx context.Context, aggregate *shelf.Shelf) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a shelf by ID.
func (r *GormShelfRepository) Get(ctx context.Context, id kernel.UUID) (*shelf.Shelf, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ShelfDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shelf", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAll retrieves every shelf ordered by code.
func (r *GormShelfRepository) GetAll(ctx context.Context) ([]*shelf.Shelf, error) {
	var dtos []ShelfDTO
	if err := r.db.WithContext(ctx).Order("code").Find(&dtos).Error; err != nil {
		return nil, err
	}

	shelves := make([]*shelf.Shelf, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, s)
	}

	return shelves, nil
}

// ClaimSlot atomically occupies one free slot on the shelf.
func (r *GormShelfRepository) ClaimSlot(ctx context.Context, shelfID kernel.UUID) error {
	if err := shelfID.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Exec(
		"UPDATE shelves SET occupied = occupied + 1 WHERE id = ? AND occupied < capacity",
		shelfID.Bytes(),
	)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Either the shelf is full or it does not exist at all.
		if _, err := r.Get(ctx, shelfID); err != nil {
			return err
		}
		return shelf.ErrShelfFull
	}

	return nil
}

// ReleaseSlot atomically frees one occupied slot on the shelf.
func (r *GormShelfRepository) ReleaseSlot(ctx context.Context, shelfID kernel.UUID) error {
	if err := shelfID.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Exec(
		"UPDATE shelves SET occupied = occupied - 1 WHERE id = ? AND occupied > 0",
		shelfID.Bytes(),
	)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx, shelfID); err != nil {
			return err
		}
		return shelf.ErrShelfEmpty
	}

	return nil
}

// AddAssignment persists a new slot assignment.
func (r *GormShelfRepository) AddAssignment(ctx context.Context, assignment *shelf.Assignment) error {
	if err := assignment.Validate(); err != nil {
		return err
	}

	dto := assignmentFromDomain(assignment)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// UpdateAssignment persists resolution changes to an existing assignment.
func (r *GormShelfRepository) UpdateAssignment(ctx context.Context, assignment *shelf.Assignment) error {
	if err := assignment.Validate(); err != nil {
		return err
	}

	dto := assignmentFromDomain(assignment)
	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"picked_up_at":       dto.PickedUpAt,
			"forced_shipment_id": dto.ForcedShipmentID,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// GetAssignment retrieves an assignment by ID.
func (r *GormShelfRepository) GetAssignment(ctx context.Context, id kernel.UUID) (*shelf.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", id.String())
		}
		return nil, err
	}

	return assignmentToDomain(dto)
}

// GetActiveAssignmentByOrder retrieves the active assignment holding the order.
func (r *GormShelfRepository) GetActiveAssignmentByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*shelf.Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND picked_up_at IS NULL AND forced_shipment_id IS NULL", orderID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", "active for order "+orderID.String())
		}
		return nil, err
	}

	return assignmentToDomain(dto)
}

// GetAssignmentsOlderThan retrieves active assignments placed before the
// cutoff instant, oldest first.
func (r *GormShelfRepository) GetAssignmentsOlderThan(
	ctx context.Context,
	cutoff time.Time,
) ([]*shelf.Assignment, error) {
	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("picked_up_at IS NULL AND forced_shipment_id IS NULL AND assigned_at < ?", cutoff).
		Order("assigned_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	assignments := make([]*shelf.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		a, err := assignmentToDomain(dto)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}
