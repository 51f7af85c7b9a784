package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetShelfUtilizationQueryHandler builds the shelf utilization report with a
// direct SQL query for optimal read performance.
type GetShelfUtilizationQueryHandler struct {
	db *gorm.DB
}

// NewGetShelfUtilizationQueryHandler creates a handler for utilization queries.
func NewGetShelfUtilizationQueryHandler(db *gorm.DB) GetShelfUtilizationQueryHandler {
	return GetShelfUtilizationQueryHandler{db: db}
}

// Handle returns per-shelf occupancy sorted by shelf code plus fleet totals.
func (h GetShelfUtilizationQueryHandler) Handle(
	ctx context.Context,
	query GetShelfUtilizationQuery,
) (GetShelfUtilizationQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShelfUtilizationQueryResponse{}, err
	}

	response := GetShelfUtilizationQueryResponse{
		Shelves: make([]ShelfUtilization, 0),
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			code,
			name,
			capacity,
			occupied
		FROM shelves
		ORDER BY code
	`).Rows()
	if err != nil {
		return GetShelfUtilizationQueryResponse{}, err
	}
	defer rows.Close()

	totalCapacity := 0
	for rows.Next() {
		var line ShelfUtilization
		var id uuid.UUID

		if err = rows.Scan(&id, &line.Code, &line.Name, &line.Capacity, &line.Occupied); err != nil {
			return GetShelfUtilizationQueryResponse{}, err
		}

		shelfID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return GetShelfUtilizationQueryResponse{}, idErr
		}
		line.ID = shelfID
		line.FreeSlots = line.Capacity - line.Occupied

		totalCapacity += line.Capacity
		response.TotalOccupied += line.Occupied
		response.TotalAvailable += line.FreeSlots
		response.Shelves = append(response.Shelves, line)
	}

	if err = rows.Err(); err != nil {
		return GetShelfUtilizationQueryResponse{}, err
	}

	if totalCapacity > 0 {
		response.UtilizationPercent = float64(response.TotalOccupied) / float64(totalCapacity) * 100
	}

	return response, nil
}
