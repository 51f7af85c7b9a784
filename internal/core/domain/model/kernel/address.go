package kernel

import (
	"errors"
	"fmt"
	"math"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when attempting to use an improperly
// initialized Address. Addresses must be created via NewAddress or NewGeocodedAddress.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress or NewGeocodedAddress constructors")

const earthRadiusKm = 6371.0

// Address is an immutable value object describing a shipping destination or origin.
// An Address is either verified (geocoded, with coordinates) or unverified.
// Unverified addresses can never qualify for pickup routing and cannot have labels
// purchased against them.
//
// Example:
//
//	addr, err := kernel.NewGeocodedAddress("12 Pier Rd", "Rotterdam", "3011AB", "NL", 51.92, 4.48)
//	if err != nil {
//	    // handle validation error
//	}
//	fmt.Println(addr.ZipPrefix(3)) // "301"
type Address struct { //nolint:recvcheck //using for validation
	street   string
	city     string
	zip      string
	country  string
	lat      float64
	lon      float64
	verified bool

	guard guard.ConstructorGuard
}

// NewAddress creates an unverified Address from raw directory data.
// Street, city, zip and country are required; coordinates are absent.
func NewAddress(street, city, zip, country string) (Address, error) {
	addr := Address{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		addr.setStreet(street),
		addr.setCity(city),
		addr.setZip(zip),
		addr.setCountry(country),
	); err != nil {
		return Address{}, err
	}

	return addr, nil
}

// NewGeocodedAddress creates a verified Address with coordinates resolved by
// the address directory. Latitude must lie in [-90, 90] and longitude in [-180, 180].
func NewGeocodedAddress(street, city, zip, country string, lat, lon float64) (Address, error) {
	addr, err := NewAddress(street, city, zip, country)
	if err != nil {
		return Address{}, err
	}

	if lat < -90 || lat > 90 {
		return Address{}, errs.NewValueIsOutOfRangeError("latitude", lat, -90.0, 90.0)
	}
	if lon < -180 || lon > 180 {
		return Address{}, errs.NewValueIsOutOfRangeError("longitude", lon, -180.0, 180.0)
	}

	addr.lat = lat
	addr.lon = lon
	addr.verified = true
	return addr, nil
}

// Validate ensures the Address was created through a constructor.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Street returns the street line of the address.
func (a Address) Street() string {
	return a.street
}

// City returns the city name.
func (a Address) City() string {
	return a.city
}

// Zip returns the postal code.
func (a Address) Zip() string {
	return a.zip
}

// Country returns the ISO country code.
func (a Address) Country() string {
	return a.country
}

// Lat returns the geocoded latitude. Zero for unverified addresses.
func (a Address) Lat() float64 {
	return a.lat
}

// Lon returns the geocoded longitude. Zero for unverified addresses.
func (a Address) Lon() float64 {
	return a.lon
}

// IsVerified reports whether the address was geocoded by the address directory.
func (a Address) IsVerified() bool {
	return a.verified
}

// ZipPrefix returns the first n characters of the postal code, used to group
// batch shipments by compatible destination. Returns the whole code when it is
// shorter than n.
func (a Address) ZipPrefix(n int) string {
	if n <= 0 || n >= len(a.zip) {
		return a.zip
	}
	return a.zip[:n]
}

// DistanceKm computes the great-circle distance to another verified address.
// Returns an error if either address is unverified, since unverified addresses
// carry no coordinates.
func (a Address) DistanceKm(other Address) (float64, error) {
	if !a.verified || !other.verified {
		return 0, errs.NewValueIsInvalidErrorWithCause("address",
			errors.New("distance requires two verified addresses"))
	}

	lat1 := a.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - a.lat) * math.Pi / 180
	dLon := (other.lon - a.lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h)), nil
}

// IsEqual compares two addresses field by field, ignoring coordinates.
func (a Address) IsEqual(other Address) bool {
	return a.street == other.street &&
		a.city == other.city &&
		a.zip == other.zip &&
		a.country == other.country
}

// String returns a single-line rendering suitable for logs.
func (a Address) String() string {
	return fmt.Sprintf("%s, %s %s, %s", a.street, a.zip, a.city, a.country)
}

func (a *Address) setStreet(street string) error {
	if street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	a.street = street
	return nil
}

func (a *Address) setCity(city string) error {
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	a.city = city
	return nil
}

func (a *Address) setZip(zip string) error {
	if zip == "" {
		return errs.NewValueIsRequiredError("zip")
	}
	a.zip = zip
	return nil
}

func (a *Address) setCountry(country string) error {
	if country == "" {
		return errs.NewValueIsRequiredError("country")
	}
	a.country = country
	return nil
}
