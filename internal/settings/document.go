package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/myo-osc/internal/channel"
)

// Global document keys.
const (
	keyHost    = "host"
	keyPort    = "port"
	keyConsole = "console"
	keyTrace   = "logOsc"
)

// LoadDocument reads a channel document from path and applies it on top of
// Default().
//
// Parameters:
//   - path: Path to a JSON or YAML document
//
// Returns:
//   - Settings: The resulting settings
//   - error: If the file cannot be read or the document is invalid
func LoadDocument(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading channel config: %w", err)
	}

	s, err := ParseDocument(data, Default())
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseDocument applies a channel document to base and returns the result.
//
// Every channel key is parsed with channel.ParsePolicy; a channel missing
// from the document is disabled. The globals host, port, console and logOsc
// leave base untouched when absent or null. Any error discards the whole
// document and base is returned unchanged.
//
// Parameters:
//   - data: Raw JSON or YAML
//   - base: Settings the document is applied to
//
// Returns:
//   - Settings: base with the document applied
//   - error: Wraps ErrInvalidConfig when the document is malformed
func ParseDocument(data []byte, base Settings) (Settings, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return base, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	root, err := channel.FromNode(&node)
	if err != nil {
		return base, err
	}

	var doc channel.Object
	switch t := root.(type) {
	case channel.Null:
		doc = channel.Object{}
	case channel.Object:
		doc = t
	default:
		return base, fmt.Errorf("%w: document root must be an object, got %s", ErrInvalidConfig, root)
	}

	out := base
	for _, k := range channel.Kinds() {
		p, err := channel.ParsePolicy(k, doc.Get(k.Key()))
		if err != nil {
			return base, err
		}
		out.Channels[k] = p
	}

	if err := applyGlobals(&out, doc); err != nil {
		return base, err
	}
	return out, nil
}

func applyGlobals(s *Settings, doc channel.Object) error {
	switch v := doc.Get(keyHost).(type) {
	case channel.Null:
	case channel.Text:
		if v == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, keyHost)
		}
		s.Host = string(v)
	default:
		return wrongType(keyHost, "string", v)
	}

	switch v := doc.Get(keyPort).(type) {
	case channel.Null:
	case channel.Number:
		port, ok := v.AsInt()
		if !ok || port < 1 || port > 65535 {
			return fmt.Errorf("%w: %s must be an integer between 1 and 65535, got %s", ErrInvalidConfig, keyPort, v)
		}
		s.Port = port
	default:
		return wrongType(keyPort, "number", v)
	}

	for key, dst := range map[string]*bool{keyConsole: &s.Console, keyTrace: &s.Trace} {
		switch v := doc.Get(key).(type) {
		case channel.Null:
		case channel.Bool:
			*dst = bool(v)
		default:
			return wrongType(key, "boolean", v)
		}
	}
	return nil
}

func wrongType(key, want string, got channel.Value) error {
	return fmt.Errorf("%w: %s: expected %s, got %s", ErrInvalidConfig, key, want, got)
}
