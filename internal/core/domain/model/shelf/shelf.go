package shelf

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrShelfIsNotConstructed is returned when a Shelf instance was not created
	// through the NewShelf or RestoreShelf factory functions.
	ErrShelfIsNotConstructed = errors.New("Shelf must be created via NewShelf or RestoreShelf constructor")

	// ErrCodeIsRequired is returned when attempting to create a shelf without a code.
	ErrCodeIsRequired = errs.NewValueIsRequiredError("code")

	// ErrNameIsRequired is returned when attempting to create a shelf without a display name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")

	// ErrShelfFull is returned when a shelf has no free slot at the moment of a
	// claim attempt. This is an expected business condition, not a defect.
	ErrShelfFull = errors.New("shelf has no free slots")

	// ErrShelfEmpty is returned when releasing a slot on a shelf with no occupancy.
	ErrShelfEmpty = errors.New("shelf has no occupied slots to release")
)

// Shelf is the aggregate root for a physical pickup shelf with a fixed number
// of slots. Occupancy counts active assignments.
//
// The in-memory Claim/Release methods express the capacity invariant
// (occupied never exceeds capacity); under concurrent assignment the
// authoritative check-and-increment happens as a single conditional update in
// the shelf repository, which enforces the same rule atomically.
type Shelf struct {
	id       kernel.UUID
	code     string
	name     string
	capacity int
	occupied int

	guard guard.ConstructorGuard
}

// NewShelf creates an empty Shelf with the given slot capacity.
func NewShelf(id kernel.UUID, code, name string, capacity int) (*Shelf, error) {
	return RestoreShelf(id, code, name, capacity, 0)
}

// RestoreShelf reconstructs a Shelf from persistent storage with its current occupancy.
func RestoreShelf(id kernel.UUID, code, name string, capacity, occupied int) (*Shelf, error) {
	s := &Shelf{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setCode(code),
		s.setName(name),
		s.setCapacity(capacity),
		s.setOccupied(occupied),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate ensures the Shelf instance was properly constructed.
func (s *Shelf) Validate() error {
	if s == nil {
		return ErrShelfIsNotConstructed
	}
	return s.guard.Validate(ErrShelfIsNotConstructed)
}

// IsEqual compares two shelves by their unique identifiers.
func (s *Shelf) IsEqual(other *Shelf) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the shelf's unique identifier.
func (s *Shelf) ID() kernel.UUID {
	return s.id
}

// Code returns the short shelf code, e.g. "A-03".
func (s *Shelf) Code() string {
	return s.code
}

// Name returns the human-readable shelf name.
func (s *Shelf) Name() string {
	return s.name
}

// Capacity returns the total number of slots.
func (s *Shelf) Capacity() int {
	return s.capacity
}

// Occupied returns the number of slots currently holding an order.
func (s *Shelf) Occupied() int {
	return s.occupied
}

// FreeSlots returns the number of unoccupied slots.
func (s *Shelf) FreeSlots() int {
	return s.capacity - s.occupied
}

// HasCapacity reports whether at least one slot is free.
func (s *Shelf) HasCapacity() bool {
	return s.occupied < s.capacity
}

// Claim occupies one slot. Returns ErrShelfFull when no slot is free.
func (s *Shelf) Claim() error {
	if !s.HasCapacity() {
		return ErrShelfFull
	}
	s.occupied++
	return nil
}

// Release frees one slot. Returns ErrShelfEmpty when nothing is occupied.
func (s *Shelf) Release() error {
	if s.occupied == 0 {
		return ErrShelfEmpty
	}
	s.occupied--
	return nil
}

func (s *Shelf) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Shelf) setCode(code string) error {
	if code == "" {
		return ErrCodeIsRequired
	}
	s.code = code
	return nil
}

func (s *Shelf) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	s.name = name
	return nil
}

func (s *Shelf) setCapacity(capacity int) error {
	if capacity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("capacity",
			errors.New("capacity must be greater than 0"))
	}
	s.capacity = capacity
	return nil
}

func (s *Shelf) setOccupied(occupied int) error {
	if occupied < 0 || occupied > s.capacity {
		return errs.NewValueIsOutOfRangeError("occupied", occupied, 0, s.capacity)
	}
	s.occupied = occupied
	return nil
}
