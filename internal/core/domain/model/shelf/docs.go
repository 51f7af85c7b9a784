// Package shelf contains the pickup-shelf aggregates: Shelf, a fixed set of
// physical slots, and Assignment, the occupancy of one slot by one order.
//
// The capacity invariant (active assignments never exceed shelf capacity) is
// expressed here and enforced atomically by the shelf repository's
// conditional claim under concurrent assignment attempts.
package shelf
