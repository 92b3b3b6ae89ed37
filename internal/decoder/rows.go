package decoder

import (
	"fmt"
	"math/bits"

	"github.com/danmuck/himdisplay/internal/protocol"
)

// rowsFromMask lists the rows whose bit is set.
func rowsFromMask(mask byte) []int {
	rows := make([]int, 0, protocol.Rows)
	for i := 0; i < protocol.Rows; i++ {
		if mask&(1<<i) != 0 {
			rows = append(rows, i)
		}
	}
	return rows
}

// rowsFromClearedMask lists the rows whose bit is clear.
func rowsFromClearedMask(mask byte) []int {
	return rowsFromMask(^mask)
}

// rowFromOneHot returns log2(b) for a byte with exactly one bit set.
func rowFromOneHot(b byte) (int, error) {
	if b == 0 || b&(b-1) != 0 {
		return 0, fmt.Errorf("%w: 0x%02x is not a single row bit", protocol.ErrInvalidRow, b)
	}
	row := bits.TrailingZeros8(b)
	if row >= protocol.Rows {
		return 0, fmt.Errorf("%w: row %d out of range", protocol.ErrInvalidRow, row)
	}
	return row, nil
}
