// Package decoder turns display bus samples into display events and
// diagnostic annotations.
//
// Ownership boundary:
// - byte classification (prologue vs data frame)
// - frame accumulation and checksum validation
// - command registry and dispatch, including continuation
// - command handlers translating payloads into events
//
// A Decoder is single threaded and consumes one sample per Decode call with
// O(1) work and memory. The Registry is immutable and may be shared.
package decoder
