// Package capture reads recorded bus bytes into decoder samples. Input is
// validated as a whole before any sample is returned.
package capture

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/himdisplay/internal/protocol"
)

const (
	FormatCSV = "csv"
	FormatHex = "hex"
)

var (
	ErrUnknownFormat = errors.New("capture: unknown format")
	ErrValueRange    = errors.New("capture: value outside 0-255")
	ErrTimestamp     = errors.New("capture: timestamps out of order")
	ErrSyntax        = errors.New("capture: syntax error")
)

func Formats() []string {
	return []string{FormatCSV, FormatHex}
}

// Open reads the capture file at path.
func Open(path, format string) ([]protocol.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, format)
}

func Read(r io.Reader, format string) ([]protocol.Sample, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return ReadCSV(r)
	case FormatHex:
		return ReadHex(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadCSV parses "start,end,value" records. Values are decimal or 0x hex;
// '#' starts a comment line and an optional header row is skipped.
func ReadCSV(r io.Reader) ([]protocol.Sample, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []protocol.Sample
	var last protocol.Timestamp
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		line, _ := cr.FieldPos(0)
		if len(out) == 0 && isHeader(rec) {
			continue
		}

		start, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d start: %w", ErrSyntax, line, err)
		}
		end, err := strconv.ParseUint(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d end: %w", ErrSyntax, line, err)
		}
		value, err := parseValue(rec[2], 10)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s := protocol.Sample{Value: value, Start: protocol.Timestamp(start), End: protocol.Timestamp(end)}
		if s.End < s.Start || (len(out) > 0 && s.Start < last) {
			return nil, fmt.Errorf("%w: line %d", ErrTimestamp, line)
		}
		last = s.Start
		out = append(out, s)
	}
	return out, nil
}

func isHeader(rec []string) bool {
	return strings.EqualFold(strings.TrimSpace(rec[0]), "start") &&
		strings.EqualFold(strings.TrimSpace(rec[2]), "value")
}

// ReadHex parses whitespace separated hex bytes. Sample i spans [i, i].
// '#' comments run to the end of the line.
func ReadHex(r io.Reader) ([]protocol.Sample, error) {
	scanner := bufio.NewScanner(r)
	var out []protocol.Sample
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, tok := range strings.Fields(line) {
			value, err := parseValue(tok, 16)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			ts := protocol.Timestamp(len(out))
			out = append(out, protocol.Sample{Value: value, Start: ts, End: ts})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("capture: read: %w", err)
	}
	return out, nil
}

// parseValue accepts an optional 0x prefix, otherwise base.
func parseValue(raw string, base int) (byte, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q", ErrSyntax, raw)
	}
	if v > 0xFF {
		return 0, fmt.Errorf("%w: %d", ErrValueRange, v)
	}
	return byte(v), nil
}

// WriteCSV writes samples in the format ReadCSV accepts.
func WriteCSV(w io.Writer, samples []protocol.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"start", "end", "value"}); err != nil {
		return err
	}
	for _, s := range samples {
		rec := []string{
			strconv.FormatUint(uint64(s.Start), 10),
			strconv.FormatUint(uint64(s.End), 10),
			fmt.Sprintf("0x%02x", s.Value),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FromBytes lays bytes out back to back, width ticks each.
func FromBytes(b []byte, width protocol.Timestamp) []protocol.Sample {
	if width == 0 {
		width = 1
	}
	out := make([]protocol.Sample, len(b))
	for i, v := range b {
		start := protocol.Timestamp(i) * width
		out[i] = protocol.Sample{Value: v, Start: start, End: start + width - 1}
	}
	return out
}
