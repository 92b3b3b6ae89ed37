package protocol

import (
	"fmt"
	"strings"
)

const (
	// FrameLen is the fixed size of a data frame, check byte included.
	FrameLen = 40
	// PrologueLen counts the bytes following a sync byte.
	PrologueLen = 3
	// FrameChecksum is what the XOR of an intact frame evaluates to.
	FrameChecksum byte = 0xFF
	// DenseFrameThreshold is the non-zero byte count above which a frame is
	// reported as dense.
	DenseFrameThreshold = 10

	Rows    = 6
	Columns = 20
)

var syncBytes = [...]byte{0x3D, 0x3F, 0xFF, 0x37}

// SyncBytes returns the values that start a prologue.
func SyncBytes() []byte {
	out := make([]byte, len(syncBytes))
	copy(out, syncBytes[:])
	return out
}

// IsSync reports whether b starts a prologue when seen outside a frame.
func IsSync(b byte) bool {
	for _, s := range syncBytes {
		if b == s {
			return true
		}
	}
	return false
}

// IsPrintable reports whether b is echoed as ASCII.
func IsPrintable(b byte) bool {
	return b >= ' ' && b < 'z'
}

// HexDump renders b as space separated two digit hex.
func HexDump(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", v)
	}
	return sb.String()
}
