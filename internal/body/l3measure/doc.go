// Package l3measure owns Layer 3 (Measurements) of the body data model.
//
// Responsibilities: the measurement kinds, the last-good-value Set that holds
// one l2slices.Record per kind, torso slice seeding from tracked joints, and
// the Estimator that runs Gate → Locator → Resolver once per tick.
//
// Dependency rule: L3 may depend on L1 and L2, but never on the I/O
// packages (replay, storage, monitor).
package l3measure
