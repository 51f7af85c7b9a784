// Package services provides domain services that orchestrate fulfillment
// decisions across multiple aggregates.
//
// The package includes:
//   - RateShopper: concurrent carrier rate collection with bounded fan-out
//   - RoutingAdvisor: the pure ship-vs-pickup decision function
//   - BatchPlanner: destination and weight compatible shipment grouping
//
// Domain services hold no persistent state; they coordinate between
// aggregates and the carrier gateway port.
package services
