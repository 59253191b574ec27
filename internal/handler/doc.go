// Package handler implements the main HTTP request handler for the proxy.
// It coordinates token authorization, instance routing, request forwarding,
// and the local metadata and health endpoints.
package handler
