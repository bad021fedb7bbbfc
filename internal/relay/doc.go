// Package relay re-publishes outbound messages to WebSocket listeners.
//
// The relay is an HTTP server with three routes:
//
//	GET /ws       WebSocket; clients subscribe to address prefixes
//	GET /health   JSON status of the bridge and its transports
//	GET /metrics  Prometheus counters
//
// The Hub implements dispatch.Sink, so it sits in the transport fan-out
// beside the OSC socket. A browser dashboard or a second OSC host on
// another network can then follow the same stream without touching the
// UDP target.
//
// # Protocol
//
// On connect the server sends a hello with the client's id:
//
//	{"type":"hello","id":"5f0c...","timestamp":"..."}
//
// Clients subscribe to address prefixes; "/" receives everything:
//
//	{"type":"subscribe","id":"1","payload":{"addresses":["/myo/pose","/myo/sync"]}}
//
// Each matching message arrives as an event:
//
//	{"type":"event","timestamp":"...","payload":{"address":"/myo/pose","args":["fist"]}}
//
// Initial subscriptions may also be given as repeated ?address= query
// parameters on the upgrade request.
package relay
