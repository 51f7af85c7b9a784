// Package order contains the ShippableOrder aggregate: the routing-relevant
// projection of a commercial order that reached production readiness.
//
// The aggregate enforces the fulfillment state machine
//
//	PENDING_ROUTING -> {PICKUP_ASSIGNED | SHIP_PENDING} ->
//	{PICKUP_COMPLETE | SHIPPED} -> DELIVERED
//
// with EXCEPTION reachable from SHIP_PENDING, SHIPPED and DELIVERED. All
// transitions are forward-only except the EXCEPTION override.
package order
