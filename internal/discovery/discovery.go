// Package discovery advertises screen receivers over mDNS and finds them
// from the decoder side.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
)

const (
	Service       = "_himd-screen._tcp"
	DefaultDomain = "local."

	txtVersion    = "txtvers"
	txtEventsPath = "path"
	txtStreamPort = "stream"
)

var ErrNotFound = errors.New("discovery: no screen receiver found")

// Advertisement describes one receiver.
type Advertisement struct {
	Instance   string
	Domain     string
	HTTPPort   int
	EventsPath string
	StreamPort int
}

// Text returns the TXT record for a.
func (a Advertisement) Text() []string {
	path := a.EventsPath
	if path == "" {
		path = "/events"
	}
	txt := []string{txtVersion + "=1", txtEventsPath + "=" + path}
	if a.StreamPort > 0 {
		txt = append(txt, txtStreamPort+"="+strconv.Itoa(a.StreamPort))
	}
	return txt
}

// Server is a running advertisement.
type Server struct {
	inner *zeroconf.Server
}

func (s *Server) Shutdown() {
	if s != nil && s.inner != nil {
		s.inner.Shutdown()
	}
}

// Advertise registers a on every multicast interface.
func Advertise(a Advertisement) (*Server, error) {
	if strings.TrimSpace(a.Instance) == "" {
		return nil, fmt.Errorf("discovery: instance name required")
	}
	if a.HTTPPort <= 0 {
		return nil, fmt.Errorf("discovery: http port required")
	}
	domain := a.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	inner, err := zeroconf.Register(a.Instance, Service, domain, a.HTTPPort, a.Text(), nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: register: %w", err)
	}
	return &Server{inner: inner}, nil
}

// Endpoint is a receiver found on the network.
type Endpoint struct {
	Instance   string
	Host       string
	HTTPPort   int
	EventsPath string
	StreamPort int
}

// HTTPURL is where the HTTP transport posts events.
func (e Endpoint) HTTPURL() string {
	path := e.EventsPath
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + net.JoinHostPort(e.Host, strconv.Itoa(e.HTTPPort)) + path
}

// StreamAddr is the stream transport address, "" if the receiver has none.
func (e Endpoint) StreamAddr() string {
	if e.StreamPort <= 0 {
		return ""
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(e.StreamPort))
}

// ParseText splits key=value TXT entries. Entries without '=' map to "".
func ParseText(txt []string) map[string]string {
	out := make(map[string]string, len(txt))
	for _, kv := range txt {
		k, v, _ := strings.Cut(kv, "=")
		out[strings.ToLower(k)] = v
	}
	return out
}

func endpointFromEntry(entry *zeroconf.ServiceEntry) Endpoint {
	txt := ParseText(entry.Text)
	host := strings.TrimSuffix(entry.HostName, ".")
	switch {
	case len(entry.AddrIPv4) > 0:
		host = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host = entry.AddrIPv6[0].String()
	}
	stream, _ := strconv.Atoi(txt[txtStreamPort])
	return Endpoint{
		Instance:   entry.Instance,
		Host:       host,
		HTTPPort:   entry.Port,
		EventsPath: txt[txtEventsPath],
		StreamPort: stream,
	}
}

// Browse collects receivers until ctx ends.
func Browse(ctx context.Context, domain string) ([]Endpoint, error) {
	return browse(ctx, domain, false)
}

// Find returns the first receiver seen before ctx ends.
func Find(ctx context.Context, domain string) (Endpoint, error) {
	found, err := browse(ctx, domain, true)
	if err != nil {
		return Endpoint{}, err
	}
	if len(found) == 0 {
		return Endpoint{}, ErrNotFound
	}
	return found[0], nil
}

func browse(ctx context.Context, domain string, first bool) ([]Endpoint, error) {
	if domain == "" {
		domain = DefaultDomain
	}
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := resolver.Browse(ctx, Service, domain, entries); err != nil {
		return nil, fmt.Errorf("discovery: browse: %w", err)
	}

	var out []Endpoint
	for entry := range entries {
		out = append(out, endpointFromEntry(entry))
		if first {
			cancel()
			break
		}
	}
	return out, nil
}
