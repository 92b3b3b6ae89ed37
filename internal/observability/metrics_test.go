package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danmuck/himdisplay/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("screen-a", "GET", "/health", 200, 12*time.Millisecond)
	RecordDecode(80, 2, 1)
	RecordEvent("decoded", "clear")
	RecordDelivery("http", 3*time.Millisecond, false)
	RecordSequenceGap("tcp", 3)
}

func TestRecordDecodeSplitsFrameResults(t *testing.T) {
	testlog.Start(t)
	okBefore := testutil.ToFloat64(decodedFrames.WithLabelValues("ok"))
	badBefore := testutil.ToFloat64(decodedFrames.WithLabelValues("checksum_error"))

	RecordDecode(200, 5, 2)

	if got := testutil.ToFloat64(decodedFrames.WithLabelValues("ok")) - okBefore; got != 3 {
		t.Fatalf("ok frames delta = %v want 3", got)
	}
	if got := testutil.ToFloat64(decodedFrames.WithLabelValues("checksum_error")) - badBefore; got != 2 {
		t.Fatalf("checksum error delta = %v want 2", got)
	}
}
