// Package main provides the entry point for the SettingsForge service.
// It runs a Fiber based web server exposing schema-driven application
// settings: pages of typed fields defined in code, values persisted per
// key with gorm, updates validated and change-tracked, and access gated
// through role-based permissions.
package main
