// Package protocol owns the display bus contract shared by the decoder and
// its collaborators.
//
// Ownership boundary:
// - bus constants (sync bytes, frame length, frame checksum)
// - capture samples and timestamps
// - diagnostic annotations and their sinks
// - the error taxonomy surfaced through annotations
package protocol
