// Package l2slices owns Layer 2 (Slices) of the body measurement model.
//
// Responsibilities: locating the pixel extent a subject occupies along one
// image axis (full-frame extremal scans and bounded runs from a seed pixel)
// and resolving that extent into a physical Record through a
// space.CoordinateMapper.
// Key types: Axis, Run, Record, Slicer.
//
// Dependency rule: L2 may depend on L1, but never on L3.
//
// Nothing in this package allocates per call: records are written in place
// and scans read the borrowed frame buffers directly.
package l2slices
