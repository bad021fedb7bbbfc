// myoosc forwards Myo armband events to an OSC receiver.
//
// Each event kind is a channel that can be switched on or off, given a
// custom OSC address and linearly rescaled. Channels are set from the
// command line, from a JSON or YAML channel document, or both. Outbound
// messages can additionally be mirrored to MQTT, InfluxDB and WebSocket
// listeners as configured in the service configuration file.
//
// Usage:
//
//	myoosc [options] [[host] port]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nerrad567/myo-osc/internal/console"
	"github.com/nerrad567/myo-osc/internal/device"
	"github.com/nerrad567/myo-osc/internal/dispatch"
	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
	"github.com/nerrad567/myo-osc/internal/infrastructure/discovery"
	"github.com/nerrad567/myo-osc/internal/infrastructure/influxdb"
	"github.com/nerrad567/myo-osc/internal/infrastructure/logging"
	"github.com/nerrad567/myo-osc/internal/infrastructure/metrics"
	"github.com/nerrad567/myo-osc/internal/infrastructure/mqtt"
	"github.com/nerrad567/myo-osc/internal/relay"
	"github.com/nerrad567/myo-osc/internal/settings"
	"github.com/nerrad567/myo-osc/internal/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Cancelled on interrupt; stops the source and all transports
//   - args: Command-line arguments without the program name
//   - stdout: Settings summary, status line and OSC trace
//   - stderr: Usage text and logs
//
// Returns:
//   - error: nil on clean shutdown or when the source is exhausted
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("myoosc", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: myoosc [options] [[host] port]\n\n")
		fs.PrintDefaults()
	}

	flags := settings.BindFlags(fs)
	serviceConfig := fs.String("service-config", "", "service configuration `file` (transports, source, logging)")
	record := fs.String("record", "", "append received device events to a JSON-lines `file` for replay")
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return fmt.Errorf("%w: %w", settings.ErrInvalidArguments, err)
	}

	if *showVersion {
		fmt.Fprintf(stdout, "myoosc %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	s, err := flags.Settings(fs.Args())
	if err != nil {
		if errors.Is(err, settings.ErrInvalidArguments) {
			fs.Usage()
		}
		return err
	}

	path := *serviceConfig
	if path == "" {
		path = os.Getenv(config.EnvServiceConfig)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logOut := stderr
	if cfg.Logging.Output == "stdout" {
		logOut = stdout
	}
	log := logging.NewWithWriter(cfg.Logging, version, logOut)
	log.Info("starting myoosc", "version", version, "commit", commit, "build_date", date)
	if path != "" {
		log.Info("service configuration loaded", "path", path)
	}

	if cfg.Discovery.Enabled {
		s = resolveTarget(ctx, cfg, s, log)
	}

	fmt.Fprint(stdout, s.String())

	b := &bridge{cfg: cfg, settings: &s, log: log, metrics: metrics.New()}
	defer b.close()

	if err := b.connect(ctx); err != nil {
		return err
	}

	source, feedback, err := b.source()
	if err != nil {
		return err
	}

	opts := dispatch.Options{
		Feedback: feedback,
		Recorder: b.metrics,
		Logger:   log.With("component", "dispatch"),
	}
	if s.Trace {
		opts.Trace = dispatch.NewWriterTrace(stdout)
	}
	listeners := device.Listeners{dispatch.New(&s, b.sinks, opts)}

	var recorder *device.EventWriter
	if *record != "" {
		f, err := os.OpenFile(*record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening recording output: %w", err)
		}
		b.onClose("recording output", f.Close)
		recorder = device.NewEventWriter(f)
		listeners = append(listeners, recorder)
		log.Info("recording events", "path", *record)
	}

	var wg sync.WaitGroup
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	if s.Console {
		con := console.New(stdout, 0)
		listeners = append(listeners, con)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := con.Run(runCtx); err != nil {
				log.Warn("console stopped", "error", err)
			}
		}()
	}

	log.Info("forwarding", "source", cfg.Source.Type, "target", s.Target(), "channels", len(s.EnabledKinds()))
	err = source.Run(runCtx, listeners)
	stop()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("running %s source: %w", cfg.Source.Type, err)
	}
	if recorder != nil && recorder.Err() != nil {
		return fmt.Errorf("writing recording: %w", recorder.Err())
	}
	log.Info("shutdown complete")
	return nil
}

// resolveTarget replaces the OSC target with a service found by mDNS.
// On failure the configured target is kept.
func resolveTarget(ctx context.Context, cfg *config.Config, s settings.Settings, log *logging.Logger) settings.Settings {
	resolver := discovery.NewResolver(cfg.Discovery, nil, log.With("component", "discovery"))
	svc, addr, err := resolver.Resolve(ctx)
	if err != nil {
		log.Warn("OSC target discovery failed, using configured target", "target", s.Target(), "error", err)
		return s
	}

	host, portText, err := net.SplitHostPort(addr)
	if err != nil {
		log.Warn("discovered address unusable", "address", addr, "error", err)
		return s
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		log.Warn("discovered port unusable", "address", addr, "error", err)
		return s
	}

	log.Info("OSC target discovered", "instance", svc.Instance, "address", addr)
	return s.WithTarget(host, port)
}

// bridge owns the transports for one run.
type bridge struct {
	cfg      *config.Config
	settings *settings.Settings
	log      *logging.Logger
	metrics  *metrics.Metrics

	sinks   transport.Fanout
	osc     *transport.OSC
	mqtt    *mqtt.Client
	closers []func()
}

// connect opens every enabled transport and collects the sinks.
func (b *bridge) connect(ctx context.Context) error {
	checks := map[string]relay.HealthCheck{}

	if b.cfg.OSC.Enabled {
		oscSink, err := transport.DialOSC(b.settings.Target())
		if err != nil {
			return fmt.Errorf("opening OSC socket: %w", err)
		}
		b.osc = oscSink
		b.sinks = append(b.sinks, oscSink)
		b.onClose("OSC socket", oscSink.Close)
	}

	if b.cfg.MQTT.Enabled {
		client, err := mqtt.Connect(b.cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(b.log.With("component", "mqtt"))
		client.SetOnConnect(func() {
			b.log.Info("MQTT connection established")
		})
		client.SetOnDisconnect(func(err error) {
			b.log.Warn("MQTT connection lost", "error", err)
		})
		b.mqtt = client
		b.onClose("MQTT", client.Close)
		checks["mqtt"] = client.HealthCheck
		b.log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", b.cfg.MQTT.Broker.Host, b.cfg.MQTT.Broker.Port),
			"prefix", client.Topics().Prefix,
		)

		if b.cfg.MQTT.Publish {
			sink, err := transport.NewMQTT(client, client.Topics(), client.QoS(), b.cfg.MQTT.Codec)
			if err != nil {
				return fmt.Errorf("creating MQTT sink: %w", err)
			}
			b.sinks = append(b.sinks, sink)
		}
	}

	if b.cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(b.cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		client.SetOnError(func(err error) {
			b.log.Warn("InfluxDB write failed", "error", err)
		})
		b.onClose("InfluxDB", client.Close)
		checks["influxdb"] = client.HealthCheck
		b.sinks = append(b.sinks, transport.NewInflux(client))
		b.log.Info("InfluxDB connected", "url", b.cfg.InfluxDB.URL, "bucket", b.cfg.InfluxDB.Bucket)
	}

	if b.cfg.Relay.Enabled {
		target := b.settings.Target
		if b.osc != nil {
			target = b.osc.Target
		}
		hub := relay.NewHub(b.log.With("component", "relay"), b.metrics.SetRelayClients)
		srv := relay.New(relay.Deps{
			Config:  b.cfg.Relay,
			Hub:     hub,
			Metrics: b.metrics.Handler(),
			Checks:  checks,
			Target:  target,
			Version: version,
			Logger:  b.log.With("component", "relay"),
		})
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("starting relay: %w", err)
		}
		b.onClose("relay", srv.Close)
		b.sinks = append(b.sinks, hub)
	}

	if len(b.sinks) == 0 {
		b.log.Warn("no transport enabled; messages will be encoded and discarded")
	}
	return nil
}

// source builds the configured device source and its haptic feedback hook.
func (b *bridge) source() (device.Source, device.Feedback, error) {
	logger := b.log.With("component", "source")

	switch b.cfg.Source.Type {
	case config.SourceReplay:
		r, err := b.openReplay()
		if err != nil {
			return nil, nil, err
		}
		replay := device.NewReplay(r, device.ReplayOptions{
			Realtime:    b.cfg.Source.Realtime,
			Speed:       b.cfg.Source.Speed,
			SkipInvalid: b.cfg.Source.SkipInvalid,
		}, logger)
		return replay, nil, nil

	case config.SourceMQTT:
		if b.mqtt == nil {
			return nil, nil, fmt.Errorf("mqtt source: %w", mqtt.ErrNotConnected)
		}
		topics := b.mqtt.Topics()
		src := device.NewMQTTSource(b.mqtt, device.MQTTSourceOptions{
			EventTopic:   topics.DeviceEvents(),
			CommandTopic: topics.DeviceCommand(),
			QoS:          b.mqtt.QoS(),
		}, logger)
		return src, src, nil

	default:
		arm, err := device.ParseArm(b.cfg.Source.Arm)
		if err != nil {
			return nil, nil, fmt.Errorf("simulator source: %w", err)
		}
		sim := device.NewSimulator(device.SimulatorOptions{
			Interval: b.cfg.SimulatorInterval(),
			Arm:      arm,
			Steps:    b.cfg.Source.Steps,
		}, logger)
		return sim, sim, nil
	}
}

func (b *bridge) openReplay() (io.Reader, error) {
	if b.cfg.Source.File == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(b.cfg.Source.File)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	b.onClose("recording", f.Close)
	return f, nil
}

// onClose registers a resource to release on shutdown.
func (b *bridge) onClose(name string, closeFn func() error) {
	b.closers = append(b.closers, func() {
		b.log.Info("closing " + name)
		if err := closeFn(); err != nil {
			b.log.Error("error closing "+name, "error", err)
		}
	})
}

// close releases resources in reverse order of opening.
func (b *bridge) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}
