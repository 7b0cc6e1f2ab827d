// Package l1frames owns Layer 1 (Frames) of the body measurement model.
//
// Responsibilities: bounds-checked views over the sensor's flat label and
// depth buffers, the per-tick Frame handed to the estimator, the collaborator
// interfaces for frame and joint sources, and the frame gate that decides
// whether a tick has new work.
// Key types: LabelImage, DepthImage, Frame, Gate.
//
// Dependency rule: L1 depends on nothing else in internal/body.
//
// Pixel order: every buffer is row-major. The pixel at (x, y) lives at index
// y*Width + x, and scans that walk a buffer "in order" visit increasing
// indices.
package l1frames
