package settings

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nerrad567/myo-osc/internal/channel"
)

// Flags holds the command-line options bound to a pflag.FlagSet.
//
// Each channel gets an enable flag with an optional inline address
// (-a, --accel[=/a/x]) and a disable flag (-A, --noaccel). The inline
// address must be attached with "=" because a separate word is read as a
// positional argument.
type Flags struct {
	// ConfigPath names a channel document to load before flags apply.
	ConfigPath string

	// Trace enables the per-message trace log.
	Trace bool

	// NoConsole disables the status line.
	NoConsole bool

	enable  [channel.KindCount]*enableFlag
	disable [channel.KindCount]bool
}

// enableFlag records whether a channel's enable flag was given and with
// which address. An address equal to the channel default keeps whatever
// address the document configured.
type enableFlag struct {
	set      bool
	address  string
	fallback string
}

func (e *enableFlag) String() string { return e.address }

func (e *enableFlag) Type() string { return "address" }

func (e *enableFlag) Set(v string) error {
	if v == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidArguments)
	}
	e.set = true
	if v != e.fallback {
		e.address = v
	}
	return nil
}

// BindFlags registers the channel and output flags on fs.
//
// Parameters:
//   - fs: Flag set to register on
//
// Returns:
//   - *Flags: Populated when fs is parsed
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "load channel settings from a JSON or YAML `file`")
	fs.BoolVarP(&f.Trace, "log-osc", "l", false, "print every OSC message sent")
	fs.BoolVar(&f.NoConsole, "no-console", false, "disable the status line")

	for _, k := range channel.Kinds() {
		e := &enableFlag{fallback: k.DefaultAddress()}
		f.enable[k] = e

		flag := fs.VarPF(e, k.FlagName(), k.Shorthand(), "send "+k.Label()+", optionally to a custom address")
		flag.NoOptDefVal = k.DefaultAddress()

		fs.BoolVarP(&f.disable[k], "no"+k.FlagName(), strings.ToUpper(k.Shorthand()), false,
			"do not send "+k.Label())
	}

	return f
}

// AnyChannelFlag reports whether at least one channel enable or disable
// flag was given.
func (f *Flags) AnyChannelFlag() bool {
	for k, e := range f.enable {
		if (e != nil && e.set) || f.disable[k] {
			return true
		}
	}
	return false
}

// Settings builds the run settings from the parsed flags.
//
// Without --config, giving no channel flag turns every channel on, while
// giving any channel flag, enable or disable, turns on only the channels
// explicitly enabled. With --config,
// the document decides and flags only change the channels they name. A
// disable flag always wins over the matching enable flag.
//
// Parameters:
//   - positional: Non-flag arguments, [[host] port]
//
// Returns:
//   - Settings: The assembled settings
//   - error: ErrInvalidConfig or ErrInvalidArguments on bad input
func (f *Flags) Settings(positional []string) (Settings, error) {
	s := Default()

	if f.ConfigPath != "" {
		loaded, err := LoadDocument(f.ConfigPath)
		if err != nil {
			return Settings{}, err
		}
		s = loaded
	} else {
		all := !f.AnyChannelFlag()
		for _, k := range channel.Kinds() {
			s.Channels[k].Enabled = all
		}
	}

	for _, k := range channel.Kinds() {
		e := f.enable[k]
		if e == nil || !e.set {
			continue
		}
		s.Channels[k].Enabled = true
		if e.address != "" {
			s.Channels[k].Address = e.address
		}
	}

	for _, k := range channel.Kinds() {
		if f.disable[k] {
			s.Channels[k].Enabled = false
		}
	}

	if f.Trace {
		s.Trace = true
	}
	if f.NoConsole {
		s.Console = false
	}

	if err := s.ApplyPositional(positional); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// FromArgs parses args with a private flag set and returns the settings.
func FromArgs(args []string) (Settings, error) {
	fs := pflag.NewFlagSet("myoosc", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	f := BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return f.Settings(fs.Args())
}
