package kernel

import (
	"errors"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrParcelIsNotConstructed is returned when attempting to use an improperly
// initialized Parcel. Parcels must be created via the NewParcel constructor.
var ErrParcelIsNotConstructed = errs.NewValueIsRequiredError(
	"parcel must be created via NewParcel constructor")

// Parcel is an immutable value object describing the physical package of an
// order: weight in grams, outer dimensions in centimeters, and item count.
// All measurements must be positive.
type Parcel struct { //nolint:recvcheck //using for validation
	weightGrams int
	lengthCm    int
	widthCm     int
	heightCm    int
	itemCount   int

	guard guard.ConstructorGuard
}

// NewParcel creates a validated Parcel. Every measurement must be greater than zero.
func NewParcel(weightGrams, lengthCm, widthCm, heightCm, itemCount int) (Parcel, error) {
	p := Parcel{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setWeight(weightGrams),
		p.setDimensions(lengthCm, widthCm, heightCm),
		p.setItemCount(itemCount),
	); err != nil {
		return Parcel{}, err
	}

	return p, nil
}

// Validate ensures the Parcel was created through NewParcel.
func (p Parcel) Validate() error {
	return p.guard.Validate(ErrParcelIsNotConstructed)
}

// WeightGrams returns the parcel weight in grams.
func (p Parcel) WeightGrams() int {
	return p.weightGrams
}

// LengthCm returns the parcel length in centimeters.
func (p Parcel) LengthCm() int {
	return p.lengthCm
}

// WidthCm returns the parcel width in centimeters.
func (p Parcel) WidthCm() int {
	return p.widthCm
}

// HeightCm returns the parcel height in centimeters.
func (p Parcel) HeightCm() int {
	return p.heightCm
}

// ItemCount returns the number of items packed in the parcel.
func (p Parcel) ItemCount() int {
	return p.itemCount
}

// Combine merges two parcels into one for batch shipping: weights and item
// counts add up, dimensions take the per-axis maximum with heights stacked.
func (p Parcel) Combine(other Parcel) (Parcel, error) {
	return NewParcel(
		p.weightGrams+other.weightGrams,
		max(p.lengthCm, other.lengthCm),
		max(p.widthCm, other.widthCm),
		p.heightCm+other.heightCm,
		p.itemCount+other.itemCount,
	)
}

func (p *Parcel) setWeight(weightGrams int) error {
	if weightGrams <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weight",
			errors.New("weight must be greater than 0 grams"))
	}
	p.weightGrams = weightGrams
	return nil
}

func (p *Parcel) setDimensions(lengthCm, widthCm, heightCm int) error {
	if lengthCm <= 0 || widthCm <= 0 || heightCm <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("dimensions",
			errors.New("all dimensions must be greater than 0 cm"))
	}
	p.lengthCm = lengthCm
	p.widthCm = widthCm
	p.heightCm = heightCm
	return nil
}

func (p *Parcel) setItemCount(itemCount int) error {
	if itemCount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("itemCount",
			errors.New("item count must be greater than 0"))
	}
	p.itemCount = itemCount
	return nil
}
