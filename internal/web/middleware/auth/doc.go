// Package auth provides the session authentication middleware for the web
// service. Authorization (permission checks) lives in internal/auth.
package auth
