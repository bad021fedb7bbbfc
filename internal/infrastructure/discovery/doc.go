// Package discovery finds the OSC receiver on the local network.
//
// When enabled, the bridge browses DNS-SD (mDNS) for a service such as
// _osc._udp and sends to the first advertised instance with a usable
// address, instead of the host and port from the channel document. Most
// OSC hosts (TouchOSC, Max, Resolume) advertise this way.
//
// Browsing is bounded by the configured timeout; on expiry the caller
// keeps the configured target.
package discovery
