package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_sketchboard._tcp"

// Host is a relay found on the local network.
type Host struct {
	Name string
	Addr string
}

// Advertise announces a relay listening on port under the board name.
func Advertise(port int, board string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(
		host,
		serviceType,
		"",
		"",
		port,
		nil,
		[]string{"SketchBoard", board},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Discover browses the local network for relays until ctx is done or
// timeout passes, whichever comes first.
func Discover(ctx context.Context, timeout time.Duration) ([]Host, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan []Host, 1)
	go func() {
		var hosts []Host
		seen := make(map[string]bool)
		for e := range entries {
			if h, ok := hostFromEntry(e); ok && !seen[h.Addr] {
				seen[h.Addr] = true
				hosts = append(hosts, h)
			}
		}
		found <- hosts
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			params.Timeout = left
		}
	}
	err := mdns.Query(params)
	close(entries)
	hosts := <-found
	if err != nil {
		return hosts, fmt.Errorf("mdns lookup: %w", err)
	}
	return hosts, nil
}

func hostFromEntry(e *mdns.ServiceEntry) (Host, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Host{}, false
	}
	name := e.Host
	if len(e.InfoFields) > 1 {
		name = e.InfoFields[1]
	}
	return Host{Name: name, Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))}, true
}
