// Package config handles loading and validating the bridge's service configuration.
//
// This package manages:
//   - Loading the optional service file (YAML)
//   - Overriding with MYOOSC_* environment variables
//   - Validation of every section, reporting all problems at once
//   - Default value handling
//
// The service file is separate from the channel document parsed by the
// settings package. The channel document keeps its fixed key set (channel
// names plus host, port, console and logOsc) while this file describes the
// process around it: event source, transports, relay and discovery.
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//   - The service file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv(config.EnvServiceConfig))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Source.Type)
package config
