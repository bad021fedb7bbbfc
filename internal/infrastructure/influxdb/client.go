package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/domain"

	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	healthTimeout  = 3 * time.Second

	// A 200 Hz EMG channel plus motion channels fill roughly 500 points a
	// second, so one batch per flush interval is the common case.
	defaultBatchSize     = 500
	defaultFlushInterval = 1
	defaultMeasurement   = "myo"

	// retryBufferPoints caps points held for retry while the server is
	// unreachable: about a minute of a full-rate session.
	retryBufferPoints = 30000

	// writeErrorWindow is how long a failed batch keeps HealthCheck failing.
	writeErrorWindow = 10 * time.Second
)

// Client records outbound messages in an InfluxDB v2 bucket.
//
// Writes go through the library's non-blocking write API, so the
// dispatcher never waits on the network. Failed batches are reported
// through SetOnError and make HealthCheck fail for a short window.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.InfluxDBConfig

	mu        sync.RWMutex
	connected bool
	onError   func(err error)
	lastErr   error
	lastErrAt time.Time
}

// writeOptions builds client options for sensor-rate writes: points carry
// microsecond timestamps, batches are gzipped and the retry buffer is
// bounded so an outage cannot grow memory without limit.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushSeconds := cfg.FlushInterval
	if flushSeconds <= 0 {
		flushSeconds = defaultFlushInterval
	}

	// #nosec G115 -- both values are positive here
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushSeconds*1000)).
		SetPrecision(time.Microsecond).
		SetUseGZip(true).
		SetRetryBufferLimit(retryBufferPoints)
}

// Connect creates the client and checks that the server answers.
//
// Parameters:
//   - cfg: InfluxDB section of the service configuration
//
// Returns:
//   - *Client: Ready for WriteMessage
//   - error: ErrDisabled, or ErrConnectionFailed when the server does not answer
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if cfg.Measurement == "" {
		cfg.Measurement = defaultMeasurement
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	ok, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("%w: %s did not answer ping", ErrConnectionFailed, cfg.URL)
	}

	c := &Client{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		cfg:       cfg,
		connected: true,
	}
	go c.watchErrors(c.writeAPI.Errors())
	return c, nil
}

// watchErrors records failed batches until the write API closes.
func (c *Client) watchErrors(errs <-chan error) {
	for err := range errs {
		c.mu.Lock()
		c.lastErr, c.lastErrAt = err, time.Now()
		callback := c.onError
		c.mu.Unlock()

		if callback != nil {
			callback(err)
		}
	}
}

// Close flushes buffered points and releases the client.
// A zero or already closed Client is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if !wasConnected || c.client == nil {
		return nil
	}
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck fails while the client is closed, after a recent failed
// batch, or when the server's /health endpoint does not report pass.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	connected := c.connected
	lastErr, lastErrAt := c.lastErr, c.lastErrAt
	c.mu.RUnlock()

	if !connected {
		return ErrNotConnected
	}
	if lastErr != nil && time.Since(lastErrAt) < writeErrorWindow {
		return fmt.Errorf("%w: %w", ErrWriteFailed, lastErr)
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	health, err := c.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health: %w", err)
	}
	if health.Status != domain.HealthCheckStatusPass {
		return fmt.Errorf("influxdb health: status %s", health.Status)
	}
	return nil
}

// IsConnected reports whether the client is open.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetOnError sets the callback for failed background batches.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	c.onError = callback
	c.mu.Unlock()
}
