// Package shipment contains the Shipment aggregate (a purchased carrier label
// covering one or more orders), the TrackingEvent audit entity, and the
// explicit per-carrier status-code mapping tables.
//
// Shipments are created once by the orchestrator and from then on advance only
// through ApplyTracking, which enforces the stage-ordering rule: stale stages
// are dropped, Exception/Returned override everything.
package shipment
