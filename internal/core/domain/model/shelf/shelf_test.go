package shelf_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shelf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShelf(t *testing.T) {
	t.Run("valid shelf starts empty", func(t *testing.T) {
		s, err := shelf.NewShelf(kernel.NewUUID(), "A-03", "Aisle A shelf 3", 4)
		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.Equal(t, 4, s.Capacity())
		assert.Equal(t, 0, s.Occupied())
		assert.Equal(t, 4, s.FreeSlots())
		assert.True(t, s.HasCapacity())
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		_, err := shelf.NewShelf(kernel.NewUUID(), "", "Aisle A shelf 3", 4)
		require.ErrorIs(t, err, shelf.ErrCodeIsRequired)

		_, err = shelf.NewShelf(kernel.NewUUID(), "A-03", "", 4)
		require.ErrorIs(t, err, shelf.ErrNameIsRequired)

		_, err = shelf.NewShelf(kernel.NewUUID(), "A-03", "Aisle A shelf 3", 0)
		require.Error(t, err)
	})

	t.Run("restore rejects occupancy above capacity", func(t *testing.T) {
		_, err := shelf.RestoreShelf(kernel.NewUUID(), "A-03", "Aisle A shelf 3", 4, 5)
		require.Error(t, err)

		s, err := shelf.RestoreShelf(kernel.NewUUID(), "A-03", "Aisle A shelf 3", 4, 4)
		require.NoError(t, err)
		assert.False(t, s.HasCapacity())
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var s shelf.Shelf
		require.ErrorIs(t, s.Validate(), shelf.ErrShelfIsNotConstructed)
	})
}

func TestShelf_ClaimRelease(t *testing.T) {
	t.Run("claim until full", func(t *testing.T) {
		s, err := shelf.NewShelf(kernel.NewUUID(), "A-03", "Aisle A shelf 3", 2)
		require.NoError(t, err)

		require.NoError(t, s.Claim())
		require.NoError(t, s.Claim())
		assert.Equal(t, 0, s.FreeSlots())
		require.ErrorIs(t, s.Claim(), shelf.ErrShelfFull)
		assert.Equal(t, 2, s.Occupied())
	})

	t.Run("release frees a slot", func(t *testing.T) {
		s, err := shelf.RestoreShelf(kernel.NewUUID(), "A-03", "Aisle A shelf 3", 2, 2)
		require.NoError(t, err)

		require.NoError(t, s.Release())
		assert.Equal(t, 1, s.Occupied())
		require.NoError(t, s.Release())
		require.ErrorIs(t, s.Release(), shelf.ErrShelfEmpty)
	})
}

func TestAssignment(t *testing.T) {
	newActive := func(t *testing.T) *shelf.Assignment {
		t.Helper()
		a, err := shelf.NewAssignment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		return a
	}

	t.Run("new assignment is active", func(t *testing.T) {
		a := newActive(t)
		require.NoError(t, a.Validate())
		assert.True(t, a.IsActive())
		assert.Nil(t, a.PickedUpAt())
		assert.Nil(t, a.ForcedShipmentID())
	})

	t.Run("confirm pickup resolves once", func(t *testing.T) {
		a := newActive(t)
		now := time.Now()

		require.NoError(t, a.ConfirmPickup(now))
		assert.False(t, a.IsActive())
		require.NotNil(t, a.PickedUpAt())

		require.ErrorIs(t, a.ConfirmPickup(now), shelf.ErrAssignmentAlreadyResolved)
	})

	t.Run("forced ship resolves once", func(t *testing.T) {
		a := newActive(t)
		shipmentID := kernel.NewUUID()

		require.NoError(t, a.MarkForcedShip(shipmentID))
		assert.False(t, a.IsActive())
		require.NotNil(t, a.ForcedShipmentID())
		assert.True(t, a.ForcedShipmentID().IsEqual(shipmentID))

		require.ErrorIs(t, a.MarkForcedShip(kernel.NewUUID()), shelf.ErrAssignmentAlreadyResolved)
		require.ErrorIs(t, a.ConfirmPickup(time.Now()), shelf.ErrAssignmentAlreadyResolved)
	})

	t.Run("staleness accounting", func(t *testing.T) {
		a, err := shelf.NewAssignment(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			time.Now().Add(-72*time.Hour),
		)
		require.NoError(t, err)

		assert.True(t, a.IsOlderThan(time.Now(), 48*time.Hour))
		assert.False(t, a.IsOlderThan(time.Now(), 96*time.Hour))

		// Resolved assignments are never stale.
		require.NoError(t, a.ConfirmPickup(time.Now()))
		assert.False(t, a.IsOlderThan(time.Now(), 48*time.Hour))
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		_, err := shelf.NewAssignment(kernel.UUID{}, kernel.NewUUID(), kernel.NewUUID(), time.Now())
		require.Error(t, err)

		_, err = shelf.NewAssignment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), time.Time{})
		require.Error(t, err)
	})
}
