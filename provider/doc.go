// Package provider is a small registry of named backend factories. A backend
// package registers its factory at wiring time and the application selects
// one by name from configuration.
package provider
