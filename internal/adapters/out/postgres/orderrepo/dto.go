// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The destination and parcel value objects are flattened into the same row;
// the status column is indexed for routing and monitor queries.
type OrderDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Destination     AddressDTO `gorm:"embedded;embeddedPrefix:destination_"`
	Parcel          ParcelDTO  `gorm:"embedded"`
	ServiceLevel    string
	PickupRequested bool
	Status          string `gorm:"index"`
	ReadyAt         time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO represents the embedded destination address within the order table.
// Coordinates are only meaningful when Verified is true.
type AddressDTO struct {
	Street   string
	City     string
	Zip      string
	Country  string
	Lat      float64
	Lon      float64
	Verified bool
}

// ParcelDTO represents the embedded physical package description within the order table.
type ParcelDTO struct {
	WeightGrams int
	LengthCm    int
	WidthCm     int
	HeightCm    int
	ItemCount   int
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	destination := aggregate.Destination()
	parcel := aggregate.Parcel()

	return OrderDTO{
		ID: aggregate.ID().Bytes(),
		Destination: AddressDTO{
			Street:   destination.Street(),
			City:     destination.City(),
			Zip:      destination.Zip(),
			Country:  destination.Country(),
			Lat:      destination.Lat(),
			Lon:      destination.Lon(),
			Verified: destination.IsVerified(),
		},
		Parcel: ParcelDTO{
			WeightGrams: parcel.WeightGrams(),
			LengthCm:    parcel.LengthCm(),
			WidthCm:     parcel.WidthCm(),
			HeightCm:    parcel.HeightCm(),
			ItemCount:   parcel.ItemCount(),
		},
		ServiceLevel:    aggregate.ServiceLevel(),
		PickupRequested: aggregate.PickupRequested(),
		Status:          aggregate.Status().String(),
		ReadyAt:         aggregate.ReadyAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including its persisted status using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var destination kernel.Address
	if dto.Destination.Verified {
		destination, err = kernel.NewGeocodedAddress(
			dto.Destination.Street,
			dto.Destination.City,
			dto.Destination.Zip,
			dto.Destination.Country,
			dto.Destination.Lat,
			dto.Destination.Lon,
		)
	} else {
		destination, err = kernel.NewAddress(
			dto.Destination.Street,
			dto.Destination.City,
			dto.Destination.Zip,
			dto.Destination.Country,
		)
	}
	if err != nil {
		return nil, err
	}

	parcel, err := kernel.NewParcel(
		dto.Parcel.WeightGrams,
		dto.Parcel.LengthCm,
		dto.Parcel.WidthCm,
		dto.Parcel.HeightCm,
		dto.Parcel.ItemCount,
	)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		destination,
		parcel,
		dto.ServiceLevel,
		dto.PickupRequested,
		order.StatusFromString(dto.Status),
		dto.ReadyAt,
	)
}
