// Package bootstrap runs the voicemap process lifecycle.
//
// An App validates typed configuration, initializes logging, starts the
// registered components in order, prints a startup summary, waits for
// SIGINT or SIGTERM and then stops hooks and components in reverse.
package bootstrap
