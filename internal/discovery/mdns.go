// Package discovery advertises a running camclient instance over mDNS so
// it can be found on the local network without knowing its address ahead
// of time.
package discovery

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/grandcat/zeroconf"
)

// ServiceType is the mDNS service type camclient advertises under.
const ServiceType = "_camclient._tcp"

// Advertise registers instance (or a hostname-derived default) on the
// network via mDNS and returns a cleanup function. It is a no-op, returning
// a harmless cleanup, when enable is false.
func Advertise(ctx context.Context, enable bool, instance string, port int, meta []string) (func(), error) {
	if !enable {
		return func() {}, nil
	}
	if instance == "" {
		host, _ := os.Hostname()
		instance = fmt.Sprintf("camclient-%s", host)
	}

	svc, err := zeroconf.Register(instance, ServiceType, "local.", port, meta, nil)
	if err != nil {
		return nil, fmt.Errorf("mdns register: %w", err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		svc.Shutdown()
	}()
	return func() { close(done); svc.Shutdown(); time.Sleep(50 * time.Millisecond) }, nil
}
