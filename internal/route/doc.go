// Package route resolves a request path to a backend instance and the path
// to forward, interpreting the first segment as an optional instance prefix.
package route
