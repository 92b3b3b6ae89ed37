package protocol

import "errors"

// Protocol errors. None of them is fatal: each is reported once through an
// annotation and decoding continues.
var (
	ErrChecksumMismatch = errors.New("protocol: checksum mismatch")
	ErrTruncatedCommand = errors.New("protocol: truncated command")
	ErrUnknownOpcode    = errors.New("protocol: unknown opcode")
	ErrUnknownEncoding  = errors.New("protocol: unknown text encoding")
	ErrTextDecode       = errors.New("protocol: text decode failure")
	ErrUnknownEscape    = errors.New("protocol: unknown escape sequence")
	ErrInvalidRow       = errors.New("protocol: invalid row selector")
	ErrInvalidGlyph     = errors.New("protocol: invalid glyph index")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrChecksumMismatch, "checksum_mismatch"},
	{ErrTruncatedCommand, "truncated_command"},
	{ErrUnknownOpcode, "unknown_opcode"},
	{ErrUnknownEncoding, "unknown_encoding"},
	{ErrTextDecode, "text_decode"},
	{ErrUnknownEscape, "unknown_escape"},
	{ErrInvalidRow, "invalid_row"},
	{ErrInvalidGlyph, "invalid_glyph"},
}

// ErrorKind returns a short stable label for the protocol error wrapped by
// err, or "other".
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
