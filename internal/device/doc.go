// Package device implements device records, rack/slot allocation and
// the mutation workflow.
//
// The Allocator enforces slot exclusivity and the 20-device rack
// capacity before any write; the partial unique index on (rack, slot)
// is the authoritative backstop for concurrent writers. The Service
// composes validation, model asset adoption, persistence and blob
// cleanup so a failed save never leaves a device row pointing at a
// blob that does not exist.
package device
