package capture

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/himdisplay/internal/protocol"
)

func TestReadCSV(t *testing.T) {
	in := "start,end,value\n# comment\n0,7,0x3d\n8,15,17\n16, 23, 0xFF\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []protocol.Sample{
		{Value: 0x3D, Start: 0, End: 7},
		{Value: 17, Start: 8, End: 15},
		{Value: 0xFF, Start: 16, End: 23},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("samples: got=%+v want=%+v", got, want)
	}
}

func TestReadCSVRejectsOutOfRange(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("0,1,256\n"))
	if !errors.Is(err, ErrValueRange) {
		t.Fatalf("expected ErrValueRange, got %v", err)
	}
	_, err = ReadCSV(strings.NewReader("0,1,-1\n"))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax for negative, got %v", err)
	}
}

func TestReadCSVRejectsBadTimestamps(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("10,5,1\n")); !errors.Is(err, ErrTimestamp) {
		t.Fatalf("expected ErrTimestamp for end<start, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("10,12,1\n4,6,2\n")); !errors.Is(err, ErrTimestamp) {
		t.Fatalf("expected ErrTimestamp for going backwards, got %v", err)
	}
}

func TestReadCSVRejectsShortRecord(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("1,2\n")); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestReadHex(t *testing.T) {
	in := "3d 00 01 02 # prologue\nE0 0x01\n"
	got, err := ReadHex(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	values := make([]byte, len(got))
	for i, s := range got {
		values[i] = s.Value
		if s.Start != protocol.Timestamp(i) || s.End != s.Start {
			t.Fatalf("sample %d timestamps: %+v", i, s)
		}
	}
	if !bytes.Equal(values, []byte{0x3D, 0, 1, 2, 0xE0, 1}) {
		t.Fatalf("values: got=% x", values)
	}
}

func TestReadHexRejectsOutOfRange(t *testing.T) {
	if _, err := ReadHex(strings.NewReader("ff 100\n")); !errors.Is(err, ErrValueRange) {
		t.Fatalf("expected ErrValueRange, got %v", err)
	}
	if _, err := ReadHex(strings.NewReader("zz\n")); !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestReadUnknownFormat(t *testing.T) {
	if _, err := Read(strings.NewReader(""), "vcd"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	samples := FromBytes([]byte{0x3F, 0, 0xE0, 0xFF}, 8)
	path := filepath.Join(t.TempDir(), "capture.csv")
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := Open(path, FormatCSV)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !reflect.DeepEqual(got, samples) {
		t.Fatalf("round trip: got=%+v want=%+v", got, samples)
	}
}
