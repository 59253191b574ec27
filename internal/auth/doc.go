// Package auth implements shared-secret bearer token authorization for the
// proxy. When no token is configured every request is allowed, which is the
// explicit insecure development mode.
package auth
