package settings

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/nerrad567/myo-osc/internal/channel"
)

// Defaults used when neither the document nor the command line sets a value.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 7777
)

// Settings is the complete channel and target configuration for one run.
type Settings struct {
	// Channels holds one policy per channel, indexed by channel.Kind.
	Channels [channel.KindCount]channel.Policy

	// Host and Port name the OSC receiver.
	Host string
	Port int

	// Console enables the single-line status display.
	Console bool

	// Trace writes every outbound message to the trace sink.
	Trace bool
}

// Default returns settings with every channel disabled at its default
// address, the loopback target, console on and trace off.
func Default() Settings {
	s := Settings{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Console: true,
		Trace:   false,
	}
	for _, k := range channel.Kinds() {
		s.Channels[k] = channel.DefaultPolicy(k)
	}
	return s
}

// Policy returns the policy for kind. Unknown kinds yield a disabled policy.
func (s *Settings) Policy(kind channel.Kind) channel.Policy {
	if !kind.Valid() {
		return channel.Policy{}
	}
	return s.Channels[kind]
}

// EnabledKinds returns the enabled channels in canonical order.
func (s *Settings) EnabledKinds() []channel.Kind {
	var out []channel.Kind
	for _, k := range channel.Kinds() {
		if s.Channels[k].Enabled {
			out = append(out, k)
		}
	}
	return out
}

// Target returns the OSC receiver as host:port.
func (s *Settings) Target() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// WithTarget returns a copy of s pointing at a different receiver.
func (s *Settings) WithTarget(host string, port int) Settings {
	out := *s
	out.Host = host
	out.Port = port
	return out
}

// String renders the startup summary.
func (s *Settings) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sending OSC to %s\n", s.Target())
	fmt.Fprintf(&b, "Console: %s, OSC log: %s\n", onOff(s.Console), onOff(s.Trace))
	for _, k := range channel.Kinds() {
		fmt.Fprintf(&b, "  %-16s %s\n", k.Key(), s.Channels[k])
	}
	return b.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// ParsePort validates a port number given as text.
func ParsePort(text string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: port %q is not a number", ErrInvalidArguments, text)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: port %d must be between 1 and 65535", ErrInvalidArguments, port)
	}
	return port, nil
}

// ApplyPositional applies the host/port positional arguments.
//
// Zero arguments leave s unchanged, one argument sets the port, two set host
// and port. Any other count fails with ErrInvalidArguments.
func (s *Settings) ApplyPositional(args []string) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		port, err := ParsePort(args[0])
		if err != nil {
			return err
		}
		s.Port = port
		return nil
	case 2:
		if strings.TrimSpace(args[0]) == "" {
			return fmt.Errorf("%w: host is empty", ErrInvalidArguments)
		}
		port, err := ParsePort(args[1])
		if err != nil {
			return err
		}
		s.Host = args[0]
		s.Port = port
		return nil
	default:
		return fmt.Errorf("%w: expected [[host] port], got %d arguments", ErrInvalidArguments, len(args))
	}
}
