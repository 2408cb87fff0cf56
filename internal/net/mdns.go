package net

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_canvasboard._tcp"

// Advertise announces a CanvasBoard server on the local network. An empty
// instance name uses the hostname.
func Advertise(instance string, port int) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, []string{"CanvasBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[MDNS] Advertising %q (%s) on port %d", instance, ServiceType, port)
	return server, nil
}

// Browse returns the first advertised server as a base URL, waiting up to
// timeout or until ctx is done.
func Browse(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	go func() {
		for e := range entries {
			if addr := entryAddr(e); addr != "" {
				select {
				case found <- addr:
				default:
				}
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	params.Logger = log.New(io.Discard, "", 0)

	errc := make(chan error, 1)
	go func() {
		errc <- mdns.Query(params)
		close(entries)
	}()

	select {
	case addr := <-found:
		return addr, nil
	case err := <-errc:
		if err != nil {
			return "", fmt.Errorf("mDNS query: %w", err)
		}
		select {
		case addr := <-found:
			return addr, nil
		default:
		}
		return "", fmt.Errorf("no %s server found", ServiceType)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func entryAddr(e *mdns.ServiceEntry) string {
	if e == nil || e.Port == 0 {
		return ""
	}
	ip := e.AddrV4
	if ip == nil {
		ip = e.Addr
	}
	if ip == nil {
		return ""
	}
	return "http://" + net.JoinHostPort(ip.String(), fmt.Sprint(e.Port))
}
