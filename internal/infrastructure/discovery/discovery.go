package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
)

const defaultTimeout = 3 * time.Second

// Logger is the logging surface used by the Resolver.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// Service is one advertised instance.
type Service struct {
	Instance string
	Host     string
	Port     int
	IPv4     []net.IP
	IPv6     []net.IP
}

// Addr returns "host:port" for sending, preferring IPv4, then IPv6, then
// the advertised host name. ok is false when nothing is usable.
func (s Service) Addr() (addr string, ok bool) {
	if s.Port <= 0 || s.Port > 65535 {
		return "", false
	}
	port := strconv.Itoa(s.Port)
	switch {
	case len(s.IPv4) > 0:
		return net.JoinHostPort(s.IPv4[0].String(), port), true
	case len(s.IPv6) > 0:
		return net.JoinHostPort(s.IPv6[0].String(), port), true
	case s.Host != "":
		return net.JoinHostPort(s.Host, port), true
	}
	return "", false
}

// Browser streams services of one type until ctx is cancelled.
type Browser func(ctx context.Context, service, domain string, found chan<- Service) error

// ZeroconfBrowser browses with multicast DNS.
func ZeroconfBrowser(opts ...zeroconf.ClientOption) Browser {
	return func(ctx context.Context, service, domain string, found chan<- Service) error {
		entries := make(chan *zeroconf.ServiceEntry)
		removed := make(chan *zeroconf.ServiceEntry)
		var gone <-chan *zeroconf.ServiceEntry = removed

		errCh := make(chan error, 1)
		go func() {
			errCh <- zeroconf.Browse(ctx, service, domain, entries, removed, opts...)
		}()

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return <-errCh
				}
				select {
				case found <- fromEntry(entry):
				case <-ctx.Done():
					return nil
				}
			case _, ok := <-gone:
				if !ok {
					gone = nil
				}
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func fromEntry(e *zeroconf.ServiceEntry) Service {
	return Service{
		Instance: e.Instance,
		Host:     e.HostName,
		Port:     e.Port,
		IPv4:     e.AddrIPv4,
		IPv6:     e.AddrIPv6,
	}
}

// Resolver looks up the OSC target.
type Resolver struct {
	cfg    config.DiscoveryConfig
	browse Browser
	logger Logger
}

// NewResolver creates a Resolver. A nil browse uses ZeroconfBrowser.
func NewResolver(cfg config.DiscoveryConfig, browse Browser, logger Logger) *Resolver {
	if browse == nil {
		browse = ZeroconfBrowser()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{cfg: cfg, browse: browse, logger: logger}
}

// Resolve browses until a matching service with a usable address appears,
// ctx ends, or the configured timeout passes.
//
// Parameters:
//   - ctx: Parent context
//
// Returns:
//   - Service: The first match
//   - string: Its "host:port"
//   - error: ErrDisabled, ErrNotFound, or a browse failure
func (r *Resolver) Resolve(ctx context.Context) (Service, string, error) {
	if !r.cfg.Enabled {
		return Service{}, "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, timeout(r.cfg))
	defer cancel()

	found := make(chan Service)
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.browse(ctx, r.cfg.Service, r.cfg.Domain, found)
	}()

	r.logger.Debug("browsing for OSC receiver", "service", r.cfg.Service, "domain", r.cfg.Domain)
	for {
		select {
		case svc := <-found:
			if r.cfg.Instance != "" && svc.Instance != r.cfg.Instance {
				r.logger.Debug("ignoring service", "instance", svc.Instance)
				continue
			}
			addr, ok := svc.Addr()
			if !ok {
				continue
			}
			r.logger.Info("discovered OSC receiver", "instance", svc.Instance, "target", addr)
			return svc, addr, nil
		case err := <-errCh:
			if err != nil {
				return Service{}, "", fmt.Errorf("browsing %s: %w", r.cfg.Service, err)
			}
			return Service{}, "", fmt.Errorf("%w: %s in %s", ErrNotFound, r.cfg.Service, r.cfg.Domain)
		case <-ctx.Done():
			return Service{}, "", fmt.Errorf("%w: %s in %s", ErrNotFound, r.cfg.Service, r.cfg.Domain)
		}
	}
}

func timeout(cfg config.DiscoveryConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return defaultTimeout
	}
	return time.Duration(cfg.Timeout) * time.Second
}
