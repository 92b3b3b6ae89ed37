package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/himdisplay/internal/capture"
	"github.com/danmuck/himdisplay/internal/config"
	"github.com/danmuck/himdisplay/internal/decoder"
	"github.com/danmuck/himdisplay/internal/protocol"
	"github.com/danmuck/himdisplay/internal/protocol/event"
	"github.com/danmuck/himdisplay/internal/testutil/testlog"
)

func writeCapture(t *testing.T, raw []byte) string {
	t.Helper()
	var buf bytes.Buffer
	if err := capture.WriteCSV(&buf, capture.FromBytes(raw, 8)); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "capture.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func testCapture() []byte {
	raw := []byte{0x3D, 0x00, 0x00, 0x00}
	raw = append(raw, protocol.SealFrame([]byte{decoder.OpClearRows, 0x01, decoder.OpTopBar, 0x01})...)
	return raw
}

func TestDecodeCaptureDiscard(t *testing.T) {
	testlog.Start(t)
	cfg := config.DefaultDecodeConfig()
	cfg.Input.Path = writeCapture(t, testCapture())
	cfg.Transport.Kind = "discard"

	var lines bytes.Buffer
	sum, err := decodeCapture(context.Background(), cfg, zerolog.Nop(), printSink(&lines))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Decoder.Frames != 1 || sum.Decoder.ChecksumErrors != 0 || sum.Decoder.Events != 2 {
		t.Fatalf("decoder stats got=%+v", sum.Decoder)
	}
	// Init plus the two decoded events.
	if sum.Publisher.Sent != 3 || sum.Publisher.Failed != 0 {
		t.Fatalf("publisher stats got=%+v", sum.Publisher)
	}
	if !strings.Contains(lines.String(), "Clear rows [0]") {
		t.Fatalf("annotations missing clear:\n%s", lines.String())
	}

	var out bytes.Buffer
	sum.write(&out)
	if !strings.Contains(out.String(), "frames=1") || !strings.Contains(out.String(), "transport=discard") {
		t.Fatalf("summary got=%q", out.String())
	}
}

func TestDecodeCapturePostsInOrder(t *testing.T) {
	testlog.Start(t)
	var (
		mu    sync.Mutex
		kinds []event.Kind
		seqs  []uint64
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		env, err := event.Unmarshal(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		kinds = append(kinds, env.Event.Kind())
		seqs = append(seqs, env.Seq)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.DefaultDecodeConfig()
	cfg.Input.Path = writeCapture(t, testCapture())
	cfg.Transport.Kind = "http"
	cfg.Transport.Target = srv.URL + "/events"

	sum, err := decodeCapture(context.Background(), cfg, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Target != srv.URL+"/events" || sum.Publisher.Sent != 3 {
		t.Fatalf("summary got=%+v", sum)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []event.Kind{event.KindInit, event.KindClear, event.KindBar}
	if len(kinds) != len(want) {
		t.Fatalf("kinds got=%v want=%v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] || seqs[i] != uint64(i) {
			t.Fatalf("delivery %d got=%s/%d want=%s/%d", i, kinds[i], seqs[i], want[i], i)
		}
	}
}

func TestDecodeCaptureMissingFile(t *testing.T) {
	testlog.Start(t)
	cfg := config.DefaultDecodeConfig()
	cfg.Input.Path = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := decodeCapture(context.Background(), cfg, zerolog.Nop(), nil); err == nil {
		t.Fatalf("expected missing capture to fail")
	}
}
