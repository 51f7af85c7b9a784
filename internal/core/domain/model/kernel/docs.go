// Package kernel contains shared value objects used across the fulfillment
// domain model: UUID identifiers, postal addresses, and physical parcels.
//
// All kernel types are immutable value objects created through validating
// constructors. The zero value of each type is invalid and fails Validate,
// which prevents unvalidated data from entering the domain model when objects
// are reconstructed from persistence or external payloads.
package kernel
