// Package network brings the wireless link up before the server binds.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dj-oyu/plant-monitor/internal/logger"
)

// ErrNoAddress is returned by Addr when the link has no usable IPv4 address.
var ErrNoAddress = errors.New("no IPv4 address on link")

// Link is a network attachment that can be (re)activated.
type Link interface {
	Activate(ctx context.Context, ssid, key string) error
	Connected() bool
	Deactivate() error
	Addr() (net.IP, error)
}

// Options controls one association round.
type Options struct {
	SSID        string
	Key         string
	MaxAttempts int
	Interval    time.Duration
	// OnAttempt is called before every poll, starting at 1.
	OnAttempt func(attempt int)
}

var log = logger.For("WiFi")

// Associate activates link and polls it until connected. It returns true once
// the link is up. After MaxAttempts failed polls the link is deactivated and,
// after one more Interval, false is returned so the caller can start a new
// round. A cancelled ctx returns false immediately.
func Associate(ctx context.Context, link Link, opts Options) bool {
	if link.Connected() {
		return true
	}

	if err := link.Activate(ctx, opts.SSID, opts.Key); err != nil {
		log.Warn("activate failed: %v", err)
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt)
		}
		log.Info("Trying to connect to %q... Attempt %d", opts.SSID, attempt)
		if link.Connected() {
			return true
		}
		if !sleep(ctx, opts.Interval) {
			return false
		}
	}

	log.Warn("Failed to connect to %q after %d attempts", opts.SSID, opts.MaxAttempts)
	if err := link.Deactivate(); err != nil {
		log.Warn("deactivate failed: %v", err)
	}
	sleep(ctx, opts.Interval)
	return false
}

// Connect repeats Associate rounds until the link is up or ctx is done.
func Connect(ctx context.Context, link Link, opts Options) error {
	for !Associate(ctx, link, opts) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// HostLink treats the host's existing network as always connected. It is used
// when no wireless interface is configured.
type HostLink struct{}

func (HostLink) Activate(context.Context, string, string) error { return nil }
func (HostLink) Connected() bool                                 { return true }
func (HostLink) Deactivate() error                               { return nil }

// Addr returns the address of the interface used for outbound traffic, or
// loopback when none is found.
func (HostLink) Addr() (net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("list interface addresses: %w", err)
	}
	if ip := firstIPv4(addrs, false); ip != nil {
		return ip, nil
	}
	return net.IPv4(127, 0, 0, 1), nil
}

// InterfaceLink watches a named interface. Association itself is left to the
// system supplicant; the link counts as connected once the interface is up and
// carries an IPv4 address.
type InterfaceLink struct {
	Name string
}

func (l InterfaceLink) Activate(context.Context, string, string) error {
	_, err := net.InterfaceByName(l.Name)
	return err
}

func (l InterfaceLink) Connected() bool {
	_, err := l.Addr()
	return err == nil
}

func (l InterfaceLink) Deactivate() error { return nil }

func (l InterfaceLink) Addr() (net.IP, error) {
	iface, err := net.InterfaceByName(l.Name)
	if err != nil {
		return nil, err
	}
	if iface.Flags&net.FlagUp == 0 {
		return nil, fmt.Errorf("%s is down: %w", l.Name, ErrNoAddress)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}
	if ip := firstIPv4(addrs, true); ip != nil {
		return ip, nil
	}
	return nil, fmt.Errorf("%s: %w", l.Name, ErrNoAddress)
}

func firstIPv4(addrs []net.Addr, allowLoopback bool) net.IP {
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipnet.IP.To4()
		if ip == nil || (!allowLoopback && ip.IsLoopback()) {
			continue
		}
		return ip
	}
	return nil
}
