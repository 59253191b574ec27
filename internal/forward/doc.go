// Package forward implements the request forwarding engine. It buffers the
// inbound body, sniffs the "stream" flag to pick a relay strategy, dispatches
// the outbound call, and relays the backend response either fully buffered
// (with JSON reconstruction) or chunk by chunk as bytes arrive. Hop-by-hop
// headers are filtered in both directions and dispatch failures map onto the
// 502/504/500 error taxonomy.
package forward
