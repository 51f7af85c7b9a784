package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetStalePickupsQueryHandler retrieves uncollected shelf assignments older
// than the query cutoff, oldest first.
type GetStalePickupsQueryHandler struct {
	db *gorm.DB
}

// NewGetStalePickupsQueryHandler creates a handler for stale pickup queries.
func NewGetStalePickupsQueryHandler(db *gorm.DB) GetStalePickupsQueryHandler {
	return GetStalePickupsQueryHandler{db: db}
}

// Handle returns every active assignment placed before the cutoff.
func (h GetStalePickupsQueryHandler) Handle(
	ctx context.Context,
	query GetStalePickupsQuery,
) ([]GetStalePickupsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	report := make([]GetStalePickupsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			a.id,
			s.code,
			a.order_id,
			a.assigned_at
		FROM shelf_assignments a
		JOIN shelves s ON s.id = a.shelf_id
		WHERE a.picked_up_at IS NULL
		  AND a.forced_shipment_id IS NULL
		  AND a.assigned_at < ?
		ORDER BY a.assigned_at
	`, query.Cutoff()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line GetStalePickupsQueryResponse
		var assignmentID, orderID uuid.UUID
		var assignedAt time.Time

		if err = rows.Scan(&assignmentID, &line.ShelfCode, &orderID, &assignedAt); err != nil {
			return nil, err
		}

		line.AssignmentID, err = kernel.UUIDFromBytes(assignmentID[:])
		if err != nil {
			return nil, err
		}
		line.OrderID, err = kernel.UUIDFromBytes(orderID[:])
		if err != nil {
			return nil, err
		}
		line.AssignedAt = assignedAt
		line.WaitingFor = query.Cutoff().Sub(assignedAt)

		report = append(report, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return report, nil
}
