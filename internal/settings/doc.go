// Package settings assembles the immutable run configuration of the bridge.
//
// Settings come from two sources that compose in one direction only:
//
//  1. An optional channel document (JSON or YAML) loaded with --config.
//  2. Command-line flags and positional arguments layered on top.
//
// Once built, a Settings value is read-only and is shared by reference with
// every dispatch call.
//
// Document keys are exactly the channel names plus the globals:
//
//	{
//	  "host": "127.0.0.1",
//	  "port": 7777,
//	  "console": true,
//	  "logOsc": false,
//	  "accel": {"path": "/a/x", "in": [-2, 2], "out": [-1, 1], "scale": "clamp"},
//	  "pose": true,
//	  "emg": "/myo/raw/emg"
//	}
//
// Channels absent from the document are disabled.
package settings
