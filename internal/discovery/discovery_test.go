package discovery

import (
	"net"
	"reflect"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestAdvertisementText(t *testing.T) {
	a := Advertisement{Instance: "screen", HTTPPort: 36002, StreamPort: 36003}
	want := []string{"txtvers=1", "path=/events", "stream=36003"}
	if got := a.Text(); !reflect.DeepEqual(got, want) {
		t.Fatalf("text: got=%v want=%v", got, want)
	}
}

func TestParseText(t *testing.T) {
	got := ParseText([]string{"txtvers=1", "Path=/events", "flag"})
	want := map[string]string{"txtvers": "1", "path": "/events", "flag": ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parse: got=%v want=%v", got, want)
	}
}

func TestEndpointFromEntry(t *testing.T) {
	entry := zeroconf.NewServiceEntry("screen", Service, DefaultDomain)
	entry.HostName = "bench.local."
	entry.Port = 36002
	entry.Text = []string{"txtvers=1", "path=/events", "stream=36003"}
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}

	ep := endpointFromEntry(entry)
	if ep.HTTPURL() != "http://192.168.1.20:36002/events" {
		t.Fatalf("http url: got=%q", ep.HTTPURL())
	}
	if ep.StreamAddr() != "192.168.1.20:36003" {
		t.Fatalf("stream addr: got=%q", ep.StreamAddr())
	}
}

func TestEndpointFallsBackToHostName(t *testing.T) {
	entry := zeroconf.NewServiceEntry("screen", Service, DefaultDomain)
	entry.HostName = "bench.local."
	entry.Port = 8080

	ep := endpointFromEntry(entry)
	if ep.HTTPURL() != "http://bench.local:8080/" {
		t.Fatalf("http url: got=%q", ep.HTTPURL())
	}
	if ep.StreamAddr() != "" {
		t.Fatalf("stream addr: got=%q want empty", ep.StreamAddr())
	}
}

func TestAdvertiseValidates(t *testing.T) {
	if _, err := Advertise(Advertisement{HTTPPort: 1}); err == nil {
		t.Fatalf("expected instance error")
	}
	if _, err := Advertise(Advertisement{Instance: "x"}); err == nil {
		t.Fatalf("expected port error")
	}
}
