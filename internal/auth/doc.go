// Package auth provides local authentication and role-based authorization.
// It owns the RBAC permission checks and the per-request authorization
// gate the settings pipeline consults before every read or write.
package auth
